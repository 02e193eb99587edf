package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estate/estate/internal/directory"
	"github.com/estate/estate/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the backend and print its status",
	RunE:  showStatus,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the people in the directory",
	RunE:  listPeople,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a person to the directory",
	Long: `Submits the create form once and prints the refreshed list.

The fields depend on the schema version:
  v1:     --name (required), --bio
  v2, v3: --given-name, --family-name, --dob (all required), --bio

Example:
  estate add --schema v3 --given-name Jane --family-name Doe --dob 1990-01-01`,
	RunE: addPerson,
}

func init() {
	addFieldFlags(addCmd)
}

func addFieldFlags(cmd *cobra.Command) {
	for _, key := range []string{"name", "given_name", "family_name", "dob", "bio"} {
		cmd.Flags().String(flagName(key), "", "")
	}
}

// flagName maps a form key to its command line flag
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func showStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	session, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	probeErr := session.Probe(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), session.Snapshot().Status)
	return probeErr
}

func listPeople(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	session, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.ListPeople(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderPeople(session.Snapshot().People, ui.DefaultStyles()))
	return nil
}

func addPerson(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	session, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	for _, f := range directory.Fields(session.Schema()) {
		name := flagName(f.Key)
		if !cmd.Flags().Changed(name) {
			continue
		}
		value, _ := cmd.Flags().GetString(name)
		if err := session.SetField(f.Key, value); err != nil {
			return err
		}
	}

	if err := session.CreatePerson(ctx); err != nil {
		var missing *directory.MissingFieldError
		if errors.As(err, &missing) {
			flags := make([]string, len(missing.Fields))
			for i, key := range missing.Fields {
				flags[i] = "--" + flagName(key)
			}
			return fmt.Errorf("missing required flags: %s", strings.Join(flags, ", "))
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderPeople(session.Snapshot().People, ui.DefaultStyles()))
	return nil
}
