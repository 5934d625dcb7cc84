package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"settlecraft/internal/convert"
	"settlecraft/internal/validate"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.html>...",
		Short: "Convert settlement pages and run consistency checks on the result",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	filesWithErrors := 0
	for i, path := range args {
		if i > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "%s\n", path)

		res, err := convertFile(path, convert.Options{})
		if err != nil {
			fmt.Fprintf(os.Stdout, "  conversion failed: %v\n", err)
			filesWithErrors++
			continue
		}

		report := validate.Settlement(res.Settlement, res.Content)

		var errorIssues []validate.Issue
		var warnIssues []validate.Issue
		for _, w := range res.Warnings {
			message := w.Message
			if w.Section != "" {
				message = w.Section + " section: " + message
			}
			warnIssues = append(warnIssues, validate.Issue{
				Severity: validate.SeverityWarn,
				Code:     w.Code,
				Message:  message,
			})
		}
		for _, issue := range report.Issues {
			switch issue.Severity {
			case validate.SeverityError:
				errorIssues = append(errorIssues, issue)
			case validate.SeverityWarn:
				warnIssues = append(warnIssues, issue)
			}
		}

		if len(errorIssues) == 0 && len(warnIssues) == 0 {
			fmt.Fprintln(os.Stdout, "  No issues found.")
			continue
		}
		if len(errorIssues) > 0 {
			fmt.Fprintf(os.Stdout, "  Errors (%d):\n", len(errorIssues))
			printIssues(os.Stdout, errorIssues)
			filesWithErrors++
		}
		if len(warnIssues) > 0 {
			fmt.Fprintf(os.Stdout, "  Warnings (%d):\n", len(warnIssues))
			printIssues(os.Stdout, warnIssues)
		}
	}

	if filesWithErrors > 0 {
		return fmt.Errorf("validation found errors in %d file(s)", filesWithErrors)
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := ""
		switch {
		case issue.Building != "" && issue.Npc != "":
			location = fmt.Sprintf("building %s, npc %s: ", issue.Building, issue.Npc)
		case issue.Building != "":
			location = fmt.Sprintf("building %s: ", issue.Building)
		case issue.Npc != "":
			location = fmt.Sprintf("npc %s: ", issue.Npc)
		}
		fmt.Fprintf(out, "    - %s%s (%s)\n", location, issue.Message, issue.Code)
	}
}
