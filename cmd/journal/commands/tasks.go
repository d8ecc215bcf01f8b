package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/benvon/daily-journal/internal/models"
	"github.com/benvon/daily-journal/internal/report"
	"github.com/benvon/daily-journal/internal/validation"
	"github.com/spf13/cobra"
)

func newTasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, add and complete tasks in the spreadsheet",
	}
	cmd.AddCommand(
		newTasksPendingCmd(opts),
		newTasksCompleteCmd(opts),
		newTasksAddCmd(opts),
	)
	return cmd
}

func newTasksPendingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List pending tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.sheetStore(ctx)
			if err != nil {
				return err
			}
			tasks, err := store.PendingTasks(ctx)
			if err != nil {
				return fmt.Errorf("failed to list pending tasks: %w", err)
			}
			return report.New(a.out).Tasks("PENDING TASKS", tasks)
		},
	}
}

func newTasksCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.sheetStore(ctx)
			if err != nil {
				return err
			}
			id := strings.ToUpper(strings.TrimSpace(args[0]))
			if err := store.CompleteTask(ctx, id); err != nil {
				return err
			}
			return report.New(a.out).TaskCompleted(id)
		},
	}
}

type addTaskOptions struct {
	priority string
	deadline string
	category string
}

// manualTask builds the row for a task typed on the command line
func manualTask(text string, o addTaskOptions, today models.Date) (models.Task, error) {
	text = validation.SanitizeText(text)
	if text == "" {
		return models.Task{}, fmt.Errorf("task text is required")
	}
	if o.deadline != "" {
		if _, err := models.ParseDate(o.deadline); err != nil {
			return models.Task{}, fmt.Errorf("--deadline: %w", err)
		}
	}
	return models.Task{
		Date:     today.String(),
		Task:     text,
		Status:   models.TaskStatusPending,
		Priority: models.NormalizePriority(o.priority),
		Deadline: o.deadline,
		Category: o.category,
		Source:   models.TaskSourceManual,
	}, nil
}

func newTasksAddCmd(opts *rootOptions) *cobra.Command {
	var o addTaskOptions

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a pending task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			task, err := manualTask(strings.Join(args, " "), o, models.DateIn(time.Now(), a.cfg.Location()))
			if err != nil {
				return err
			}
			store, err := a.sheetStore(ctx)
			if err != nil {
				return err
			}
			id, err := store.AddTask(ctx, task)
			if err != nil {
				return fmt.Errorf("failed to add task: %w", err)
			}
			return report.New(a.out).TaskAdded(id, task.Task)
		},
	}

	cmd.Flags().StringVar(&o.priority, "priority", string(models.PriorityMedium), "high, medium or low")
	cmd.Flags().StringVar(&o.deadline, "deadline", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.category, "category", "", "free-form category")
	return cmd
}
