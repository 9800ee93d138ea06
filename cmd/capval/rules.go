package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cellannotation/capval/rule"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the schema rules in execution order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry := rule.Default(nil)
		disabled := make(map[string]bool, len(cfg.DisabledRules))
		for _, name := range cfg.DisabledRules {
			disabled[name] = true
		}

		for _, r := range registry.Rules() {
			marker := " "
			if disabled[r.Name()] {
				marker = "-"
			}
			fmt.Printf("%s %-22s %-7s %s\n", marker, r.Name(), r.Severity(), r.Description())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
