// ABOUTME: Terminal rendering of profiles and thoughts for the CLI
// ABOUTME: Uses tabwriter for friend tables and fatih/color for headings

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/2389/deep-thoughts/internal/client"
)

func printProfile(w io.Writer, u *client.User) {
	cyan := color.New(color.FgCyan)

	fmt.Fprintln(w)
	cyan.Fprintf(w, "  %s\n", u.Username)
	fmt.Fprintf(w, "  ID:       %s\n", u.ID)
	if u.Email != "" {
		fmt.Fprintf(w, "  Email:    %s\n", u.Email)
	}
	fmt.Fprintf(w, "  Friends:  %d\n", u.FriendCount)
	fmt.Fprintf(w, "  Thoughts: %d\n", len(u.Thoughts))

	if len(u.Friends) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tUSERNAME")
		fmt.Fprintln(tw, "  --\t--------")
		for _, f := range u.Friends {
			fmt.Fprintf(tw, "  %s\t%s\n", f.ID, f.Username)
		}
		tw.Flush()
	}

	if len(u.Thoughts) > 0 {
		fmt.Fprintln(w)
		for _, t := range u.Thoughts {
			printThought(w, t, false)
		}
	}
	fmt.Fprintln(w)
}

func printThought(w io.Writer, t client.Thought, withReactions bool) {
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	green.Fprintf(w, "  %s", t.Username)
	gray.Fprintf(w, "  %s  [%s]\n", t.CreatedAt, t.ID)
	fmt.Fprintf(w, "    %s\n", t.ThoughtText)
	if t.ReactionCount > 0 {
		gray.Fprintf(w, "    %d reaction(s)\n", t.ReactionCount)
	}
	if withReactions {
		for _, r := range t.Reactions {
			fmt.Fprintf(w, "      ↳ %s: %s\n", r.Username, r.ReactionBody)
		}
	}
}
