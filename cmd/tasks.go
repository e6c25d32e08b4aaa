package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/journey"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/ui/components"
	"github.com/abhisek/learnpath/internal/ui/theme"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Release the learner's next task",
	Long: "Releases the next task once the previous one is completed. Name, level " +
		"and roadmap default to the learner's latest quiz result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		req := journey.AssignRequest{}
		req.Email, _ = cmd.Flags().GetString("email")
		req.Name, _ = cmd.Flags().GetString("name")
		req.Level, _ = cmd.Flags().GetString("level")
		req.DurationWeeks, _ = cmd.Flags().GetInt("weeks")
		if req.DurationWeeks == 0 {
			req.DurationWeeks = rt.cfg.DefaultWeeks
		}
		if err := rt.assessment.Complete(ctx, &req); err != nil {
			return err
		}

		a, err := rt.scheduler.AssignNext(ctx, req)
		w := cmd.OutOrStdout()
		if err != nil {
			var done *journey.JourneyCompleteError
			var prior *journey.PriorTaskIncompleteError
			switch {
			case errors.As(err, &done):
				fmt.Fprintln(w, theme.Completed.Render(fmt.Sprintf("Congratulations! You have completed all %d tasks.", done.Total)))
				return nil
			case errors.As(err, &prior):
				fmt.Fprintln(w, theme.Failure.Render(fmt.Sprintf("Task %d is still pending.", prior.TaskNumber))+" "+
					theme.Hint.Render(fmt.Sprintf("Submit it with `learnpath submit --task-id %d`.", prior.TaskID)))
				return err
			}
			return err
		}

		fmt.Fprintln(w, theme.Title.Render(fmt.Sprintf("Task %d", a.TaskNumber))+"  "+theme.Hint.Render(fmt.Sprintf("id %d", a.TaskID)))
		fmt.Fprintln(w, theme.Label.Render("Assigned")+a.AssignedDate.String())
		fmt.Fprintln(w, theme.Label.Render("Due")+a.DueDate.String())
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Card.Render(a.Description))
		if !a.EmailSent {
			fmt.Fprintln(w, theme.Hint.Render("No email was sent."))
		}
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Complete the pending task",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		taskID, _ := cmd.Flags().GetInt64("task-id")
		content, _ := cmd.Flags().GetString("content")
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read submission: %w", err)
			}
			content = string(b)
		}

		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sub, err := rt.lifecycle.Submit(ctx, email, taskID, content)
		if err != nil {
			if errors.Is(err, journey.ErrNotFoundOrUnauthorized) {
				return fmt.Errorf("task %d is not a pending task of %s", taskID, email)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Completed.Render(fmt.Sprintf("Task %d submitted on %s.", sub.TaskID, sub.SubmittedDate)))
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the learner's tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		all, _ := cmd.Flags().GetBool("all")

		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		tasks, err := rt.lifecycle.List(ctx, email)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(w, "No tasks yet.")
			return nil
		}

		fmt.Fprintf(w, "%-4s  %-6s  %-10s  %-10s  %-10s  %s\n", "#", "ID", "Assigned", "Due", "Submitted", "Status")
		fmt.Fprintln(w, strings.Repeat("─", 64))
		for _, t := range tasks {
			if t.Status == store.StatusScheduled && !all {
				continue
			}
			submitted := "-"
			if t.SubmittedDate != nil {
				submitted = t.SubmittedDate.String()
			}
			fmt.Fprintf(w, "%-4d  %-6d  %-10s  %-10s  %-10s  %s\n",
				t.Number, t.ID, t.AssignedDate, t.DueDate, submitted, theme.Status(string(t.Status)))
		}
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Attach a file to a released task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		number, _ := cmd.Flags().GetInt("task")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		rel, err := rt.lifecycle.Attach(ctx, email, number, filepath.Base(args[0]), f)
		if err != nil {
			if errors.Is(err, journey.ErrNotFoundOrUnauthorized) {
				return fmt.Errorf("task %d has not been released to %s", number, email)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Completed.Render("Stored ")+filepath.Join(rt.uploads.Root, rel))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the learner's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sum, err := rt.progress.Summary(ctx, email)
		if err != nil {
			return err
		}
		if sum.Quiz == nil && sum.Total == 0 {
			return fmt.Errorf("no data for %s", email)
		}

		w := cmd.OutOrStdout()
		var b strings.Builder
		b.WriteString(theme.Title.Render(sum.Name) + "  " + theme.Hint.Render(sum.Email) + "\n")
		if sum.Quiz != nil {
			b.WriteString(theme.Label.Render("Quiz") + fmt.Sprintf("%d (%s)\n", sum.Quiz.Score, sum.Quiz.Level))
		}
		b.WriteString(theme.Label.Render("Assigned") + fmt.Sprintf("%d of %d\n", sum.Assigned, sum.Total))
		b.WriteString(components.NewProgressBar("Completed", sum.Completed, sum.Total, 48).View())
		fmt.Fprintln(w, theme.Card.Render(b.String()))

		for _, t := range sum.Tasks {
			fmt.Fprintln(w)
			fmt.Fprintln(w, theme.Heading.Render(fmt.Sprintf("Task %d", t.Number))+"  "+theme.Status(string(t.Status))+"  "+
				theme.Hint.Render("due "+t.DueDate.String()))
			fmt.Fprintln(w, indent(t.Description, "  "))
			if t.Submission != "" {
				fmt.Fprintln(w, theme.Label.Render("  Submitted")+indent(t.Submission, "  "))
			}
			if t.AttachmentURL != "" {
				fmt.Fprintln(w, theme.Label.Render("  Attachment")+t.AttachmentURL)
			}
		}
		return nil
	},
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func init() {
	for _, c := range []*cobra.Command{assignCmd, submitCmd, tasksCmd, uploadCmd, summaryCmd} {
		c.Flags().String("email", "", "Learner email (required)")
		_ = c.MarkFlagRequired("email")
	}

	assignCmd.Flags().String("name", "", "Learner name (default: from the latest quiz)")
	assignCmd.Flags().String("level", "", "Proficiency level (default: from the latest quiz)")
	assignCmd.Flags().Int("weeks", 0, "Journey length in weeks, 1-52 (default: LEARNPATH_DEFAULT_WEEKS)")

	submitCmd.Flags().Int64("task-id", 0, "ID of the pending task (required)")
	submitCmd.Flags().String("content", "", "Submission text")
	submitCmd.Flags().String("file", "", "Read the submission text from a file")
	_ = submitCmd.MarkFlagRequired("task-id")
	submitCmd.MarkFlagsMutuallyExclusive("content", "file")

	tasksCmd.Flags().Bool("all", false, "Include scheduled tasks that are not released yet")

	uploadCmd.Flags().Int("task", 0, "Task number (required)")
	_ = uploadCmd.MarkFlagRequired("task")
}
