package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/learner"
	"github.com/abhisek/learnpath/internal/ui/theme"
)

var learnersCmd = &cobra.Command{
	Use:   "learners",
	Short: "Manage learners",
}

var learnersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		refs, err := rt.roster.List(ctx)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(refs) == 0 {
			fmt.Fprintln(w, "No learners yet.")
			return nil
		}
		for _, r := range refs {
			fmt.Fprintf(w, "%-36s  %s\n", r.Email, r.Name)
		}
		return nil
	},
}

var learnersDeleteCmd = &cobra.Command{
	Use:   "delete <email>",
	Short: "Delete a learner's tasks, quiz results and uploads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := learner.NormalizeEmail(args[0])
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes {
			fmt.Fprint(cmd.OutOrStdout(), theme.Failure.Render("Delete all data for "+email+"?")+" [y/N] ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		counts, err := rt.roster.Delete(ctx, email)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d tasks and %d quiz results for %s.\n", counts.Tasks, counts.QuizResults, email)
		return nil
	},
}

func init() {
	learnersDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	learnersCmd.AddCommand(learnersListCmd)
	learnersCmd.AddCommand(learnersDeleteCmd)
}
