package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/quiz"
	"github.com/abhisek/learnpath/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take the proficiency quiz and get a roadmap",
	Long: "Asks each question interactively unless --answers is given, e.g. " +
		"--answers 1=b,2=a. The result and roadmap are saved for the learner.",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		raw, _ := cmd.Flags().GetString("answers")

		var answers map[string]string
		var err error
		if raw != "" {
			answers, err = parseAnswers(raw)
		} else {
			answers, err = askQuestions(cmd.InOrStdin(), cmd.OutOrStdout())
		}
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		rt, err := openRuntime(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		out, err := rt.assessment.Take(ctx, name, email, answers)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Title.Render(fmt.Sprintf("%s, you scored %d/%d", out.Name, out.Result.Score, quiz.Len())))
		fmt.Fprintln(w, theme.Label.Render("Level")+theme.Body.Render(out.Result.Level))
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Heading.Render("Your roadmap"))
		for _, line := range out.Roadmap {
			fmt.Fprintln(w, "  "+line)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Hint.Render("Run `learnpath assign --email "+out.Email+"` to get your first task."))
		return nil
	},
}

func init() {
	quizCmd.Flags().String("name", "", "Learner name (required)")
	quizCmd.Flags().String("email", "", "Learner email (required)")
	quizCmd.Flags().String("answers", "", "Comma-separated id=option pairs; skips the prompts")
	_ = quizCmd.MarkFlagRequired("name")
	_ = quizCmd.MarkFlagRequired("email")
}

// parseAnswers reads "1=a,2=c" into a question id to option map.
func parseAnswers(raw string) (map[string]string, error) {
	answers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, opt, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid answer %q, want id=option", pair)
		}
		answers[strings.TrimSpace(id)] = strings.ToLower(strings.TrimSpace(opt))
	}
	return answers, nil
}

func askQuestions(in io.Reader, out io.Writer) (map[string]string, error) {
	sc := bufio.NewScanner(in)
	answers := make(map[string]string)
	questions := quiz.Questions()

	for i, q := range questions {
		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Heading.Render(fmt.Sprintf("Question %d/%d", i+1, len(questions)))+"  "+theme.Hint.Render(q.Topic))
		fmt.Fprintln(out, theme.Body.Render(q.Text))
		for _, k := range quiz.OptionKeys {
			if opt, ok := q.Options[k]; ok {
				fmt.Fprintf(out, "  %s) %s\n", k, opt)
			}
		}

		for {
			fmt.Fprint(out, theme.Hint.Render("answer: "))
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return nil, err
				}
				// Input ended; remaining questions count as unanswered.
				return answers, nil
			}
			a := strings.ToLower(strings.TrimSpace(sc.Text()))
			if a == "" {
				break
			}
			if _, ok := q.Options[a]; ok {
				answers[q.ID] = a
				break
			}
			fmt.Fprintln(out, theme.Failure.Render("choose one of "+strings.Join(quiz.OptionKeys, ", ")))
		}
	}
	return answers, nil
}
