package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"editcmd/internal/command"
)

var listScope string

// listCmd lists the published commands
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available commands",
	RunE:  listCommands,
}

func init() {
	listCmd.Flags().StringVar(&listScope, "scope", "", "Only list commands in this scope")
}

func listCommands(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.shutdown()

	cmds := a.registry.All()
	if listScope != "" {
		cmds = a.registry.InScope(listScope)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d commands", len(cmds))))
	for _, c := range cmds {
		fmt.Fprintln(out, describe(c))
	}
	return nil
}

func describe(c command.Command) string {
	meta := c.Meta()
	var b strings.Builder
	b.WriteString(nameStyle.Render(meta.Name))
	if meta.Key != "" {
		b.WriteString(" " + keyStyle.Render("["+meta.Key+"]"))
	}

	inputs := make([]string, len(meta.Inputs))
	for i, k := range meta.Inputs {
		inputs[i] = k.String()
	}
	if len(inputs) == 0 {
		inputs = append(inputs, command.InputNone.String())
	}
	kind := "inline"
	if _, ok := c.(*command.ShellCommand); ok {
		kind = "shell"
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s  %s -> %s", kind, strings.Join(inputs, ","), meta.Output)))
	return b.String()
}
