package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"pocketpilot/internal/config"
	"pocketpilot/internal/extraction"
	"pocketpilot/internal/service"
)

type receiptOutput struct {
	*extraction.ExtractedReceipt
	IsValid bool `json:"is_valid"`
}

func rulesFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "rules",
		Aliases: []string{"r"},
		Usage:   "rules `FILE` (JSON); built-in defaults when omitted",
		EnvVars: []string{"POCKETPILOT_EXTRACTION_RULES_FILE"},
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "receiptctl",
		Usage:     "run the receipt extraction pipeline offline",
		Writer:    out,
		ErrWriter: out,
		Before: func(*cli.Context) error {
			_ = godotenv.Load()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "run the pipeline on a saved extraction document",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "extraction document `FILE` ({\"entities\": [...], \"text\": ...})", Required: true},
					rulesFlag(),
				},
				Action: func(c *cli.Context) error {
					data, err := os.ReadFile(c.String("source"))
					if err != nil {
						return fmt.Errorf("reading source: %w", err)
					}
					src, err := extraction.DecodeSource(data)
					if err != nil {
						return err
					}
					return runPipeline(c, src)
				},
			},
			{
				Name:      "text",
				Usage:     "run the pipeline on raw receipt text only",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "text `FILE`; \"-\" reads stdin", Required: true},
					rulesFlag(),
				},
				Action: func(c *cli.Context) error {
					var data []byte
					var err error
					if name := c.String("file"); name == "-" {
						data, err = io.ReadAll(c.App.Reader)
					} else {
						data, err = os.ReadFile(name)
					}
					if err != nil {
						return fmt.Errorf("reading text: %w", err)
					}
					return runPipeline(c, extraction.TextSource(string(data)))
				},
			},
			{
				Name:      "categorize",
				Usage:     "print the category for each merchant name",
				ArgsUsage: "MERCHANT...",
				Flags:     []cli.Flag{rulesFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("at least one merchant name is required")
					}
					rules, err := loadRules(c.String("rules"))
					if err != nil {
						return err
					}
					categorizer := extraction.NewCategorizer(rules)
					for _, merchant := range c.Args().Slice() {
						fmt.Fprintf(c.App.Writer, "%s\t%s\n", merchant, categorizer.Categorize(merchant))
					}
					return nil
				},
			},
			{
				Name:  "rules",
				Usage: "inspect pipeline rules",
				Subcommands: []*cli.Command{
					{
						Name:      "validate",
						Usage:     "check a rules file against the schema",
						ArgsUsage: "FILE",
						Action: func(c *cli.Context) error {
							if c.NArg() != 1 {
								return errors.New("exactly one rules file is required")
							}
							if _, err := extraction.LoadRules(c.Args().First()); err != nil {
								return err
							}
							fmt.Fprintf(c.App.Writer, "%s: ok\n", c.Args().First())
							return nil
						},
					},
					{
						Name:  "defaults",
						Usage: "print the built-in rules as JSON",
						Action: func(c *cli.Context) error {
							return writeJSON(c.App.Writer, extraction.DefaultRules())
						},
					},
				},
			},
			{
				Name:  "token",
				Usage: "issue a bearer token for local API testing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "user `UUID`; random when omitted"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: func(c *cli.Context) error {
					userID := uuid.New()
					if raw := c.String("user"); raw != "" {
						parsed, err := uuid.Parse(raw)
						if err != nil {
							return fmt.Errorf("invalid user id: %w", err)
						}
						userID = parsed
					}
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					token, err := service.NewTokenService(cfg.JWT).Issue(userID, c.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, token)
					return nil
				},
			},
		},
	}
}

func loadRules(path string) (extraction.Rules, error) {
	if path == "" {
		return extraction.DefaultRules(), nil
	}
	return extraction.LoadRules(path)
}

func runPipeline(c *cli.Context, src *extraction.Source) error {
	rules, err := loadRules(c.String("rules"))
	if err != nil {
		return err
	}
	pipeline, err := extraction.NewPipeline(rules)
	if err != nil {
		return err
	}
	receipt, err := pipeline.Run(src)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, receiptOutput{ExtractedReceipt: receipt, IsValid: receipt.IsValid()})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
