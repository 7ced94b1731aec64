package main

import (
	"fmt"
	"math/rand/v2"

	"minebot/src/llm/action"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var (
	situation string
	goal      string
)

// decideCmd asks for a single decision and prints it
var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Print one action decision as JSON",
	Long: `Ask the action model once and print the resulting decision as JSON.
The fallback menu is used when no API key is configured or the model fails.`,
	RunE: runDecide,
}

// decisionOutput adds the fallback cause to a decision
type decisionOutput struct {
	action.Decision
	Situation string `json:"situation"`
	Goal      string `json:"goal"`
	Error     string `json:"error,omitempty"`
}

func runDecide(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	s := situation
	if s == "" {
		s = a.catalog.Situations[rand.IntN(len(a.catalog.Situations))]
	}
	g := goal
	if g == "" {
		g = cfg.Bot.Goal
	}

	d := a.provider.Decide(ctx, s, g)
	out := decisionOutput{Decision: d, Situation: s, Goal: g}
	if d.Err != nil {
		out.Error = d.Err.Error()
	}

	data, err := sonic.ConfigDefault.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
