package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var listAge int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, backend, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer backend.Close()

		questions, err := backend.Questions.List(cmd.Context())
		if err != nil {
			return err
		}

		printQuestions(filterByAge(questions, listAge))
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listAge, "age", 0, "Only show questions for this age")
}

func filterByAge(questions []domain.Question, age int) []domain.Question {
	if age == 0 {
		return questions
	}
	var out []domain.Question
	for _, q := range questions {
		if q.Age == age {
			out = append(out, q)
		}
	}
	return out
}

func printQuestions(questions []domain.Question) {
	if len(questions) == 0 {
		fmt.Println(headerStyle.Render("No questions found"))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Found %d question(s)", len(questions))))
	fmt.Println()

	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Age")+"\t"+titleStyle.Render("Question")+"\t"+titleStyle.Render("Audio")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, q := range questions {
		text := q.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		audio := q.AudioRef
		if audio == "" {
			audio = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(q.ID.String()[:8]),
			countStyle.Render(strconv.Itoa(q.Age)),
			text,
			audio,
		)
	}
	_ = w.Flush()
}
