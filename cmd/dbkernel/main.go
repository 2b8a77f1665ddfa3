// Package main contains the cli implementation of the engine. It uses
// cobra for command-line parsing.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dbkernel/internal/config"
	"dbkernel/internal/engine"
	"dbkernel/internal/resultfmt"
	"dbkernel/internal/sqlfront"
)

type rootFlags struct {
	configFile string
	exec       string
}

func main() {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "dbkernel <env-dir>",
		Short: "A small relational database kernel",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0], flags)
		},
	}
	rootCmd.Flags().StringVar(&flags.configFile, "config", "", "path to a TOML engine config file")
	rootCmd.Flags().StringVarP(&flags.exec, "exec", "e", "", "run one statement non-interactively and exit")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(envDir string, flags *rootFlags) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return err
	}

	e, err := engine.Open(envDir, cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer e.Close()

	formatter, err := resultfmt.NewFormatter("")
	if err != nil {
		return err
	}

	if flags.exec != "" {
		return execOne(e, formatter, flags.exec)
	}
	return repl(e, formatter)
}

func execOne(e *engine.Engine, formatter resultfmt.Formatter, sql string) error {
	res, _, err := e.Execute(context.Background(), sql)
	if err != nil {
		fmt.Println(resultfmt.FormatError(err))
		return nil
	}
	out, err := formatter.Format(res)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func repl(e *engine.Engine, formatter resultfmt.Formatter) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("SQL> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" {
			return nil
		}
		if line == "" {
			fmt.Print("SQL> ")
			continue
		}

		res, restored, err := e.Execute(context.Background(), line)
		if err != nil {
			var parseErr *sqlfront.ParseError
			if errors.As(err, &parseErr) {
				fmt.Printf("Invalid SQL: %s\n", line)
			} else {
				fmt.Println(restored)
				fmt.Println(resultfmt.FormatError(err))
			}
			fmt.Print("SQL> ")
			continue
		}

		fmt.Println(restored)
		out, err := formatter.Format(res)
		if err != nil {
			return err
		}
		fmt.Print(out)
		fmt.Print("SQL> ")
	}
	return scanner.Err()
}
