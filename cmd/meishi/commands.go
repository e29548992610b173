package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/meishi/internal/config"
	"github.com/kalambet/meishi/internal/layout"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/render"
	"github.com/kalambet/meishi/internal/theme"
)

// --- catalog ---

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the page layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, d := range layout.Catalog() {
			keys := make([]string, len(d.Order))
			for i, k := range d.Order {
				keys[i] = string(k)
			}
			fmt.Fprintf(out, "%s  %-16s %s\n", colorize(colorCyan, string(d.ID)), d.Name, d.Description)
			fmt.Fprintf(out, "     sections: %s\n", strings.Join(keys, ", "))
		}
		return nil
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the style presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, p := range theme.All() {
			fmt.Fprintf(out, "%s  %-20s %s %s\n", colorize(colorCyan, string(p.ID)), p.Name, p.Background, p.Accent)
		}
		return nil
	},
}

// --- preview ---

var previewCmd = &cobra.Command{
	Use:   "preview <profile.json>",
	Short: "Render a profile JSON file to HTML without a server",
	Long: `Render a profile JSON file to HTML without a server.

The file holds a profile as returned by "meishi profile show", including its
generated document and links.

Examples:
  meishi preview me.json > page.html
  meishi preview me.json --layout L06 --theme T08 --output page.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layoutID, _ := cmd.Flags().GetString("layout")
		themeID, _ := cmd.Flags().GetString("theme")
		output, _ := cmd.Flags().GetString("output")

		if layoutID != "" {
			if _, ok := layout.Parse(layoutID); !ok {
				return fmt.Errorf("unknown layout %q (want L01..L10)", layoutID)
			}
		}
		if themeID != "" {
			if _, ok := theme.ParseID(themeID); !ok {
				return fmt.Errorf("unknown theme %q (want T01..T10)", themeID)
			}
		}

		p, err := readProfileFile(args[0])
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		in := render.Input{
			Profile:  p,
			Document: p.Document,
			LayoutID: layoutID,
			ThemeID:  themeID,
			ShareURL: shareURL(p.Slug),
		}
		if err := render.Write(w, in); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
		if output != "" {
			printSuccess("Wrote %s (%s, %s)", output, in.Layout(), in.Theme().ID)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().String("layout", "", "layout id to render with (default: the profile's)")
	previewCmd.Flags().String("theme", "", "theme id to render with (default: resolved from the profile)")
	previewCmd.Flags().String("output", "", "output file path (default: stdout)")
}

// readProfileFile accepts either a bare profile or the {"profile": ...}
// envelope the API returns.
func readProfileFile(path string) (profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	var envelope struct {
		Profile *profile.Profile `json:"profile"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return profile.Profile{}, fmt.Errorf("invalid profile JSON: %w", err)
	}
	if envelope.Profile != nil {
		return *envelope.Profile, nil
	}
	var p profile.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return profile.Profile{}, fmt.Errorf("invalid profile JSON: %w", err)
	}
	return p, nil
}

func shareURL(slug string) string {
	cfg, err := config.Load()
	if err != nil || slug == "" {
		return ""
	}
	return strings.TrimRight(cfg.Server.PublicBaseURL, "/") + "/" + slug
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your page on a running server",
}

type profileEnvelope struct {
	Profile  json.RawMessage `json:"profile"`
	State    string          `json:"state"`
	ShareURL string          `json:"shareUrl"`
}

func printProfileSummary(env profileEnvelope) {
	printStatus("State", "%s", env.State)
	printStatus("URL", "%s", env.ShareURL)
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/api/profile/me")
		if err != nil {
			return err
		}
		var env profileEnvelope
		if err := decodeJSON(resp, &env); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), env)
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update <fields.json>",
	Short: "Apply a partial update from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading fields: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.patch(cmd.Context(), "/api/profile/update", fields)
		if err != nil {
			return err
		}
		var env profileEnvelope
		if err := decodeJSON(resp, &env); err != nil {
			return err
		}
		printSuccess("Profile updated")
		printProfileSummary(env)
		return nil
	},
}

var profileGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the page document from your answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		printStep("Generating (this can take a while)...")
		resp, err := client.post(cmd.Context(), "/api/profile/generate", nil)
		if err != nil {
			return err
		}
		var env profileEnvelope
		if err := decodeJSON(resp, &env); err != nil {
			return err
		}
		printSuccess("Document generated")
		printProfileSummary(env)
		return nil
	},
}

func setPublished(ctx context.Context, published bool) (profileEnvelope, error) {
	client, err := newAPIClient()
	if err != nil {
		return profileEnvelope{}, err
	}
	resp, err := client.post(ctx, "/api/profile/publish", map[string]bool{"isPublished": published})
	if err != nil {
		return profileEnvelope{}, err
	}
	var env profileEnvelope
	err = decodeJSON(resp, &env)
	return env, err
}

var profilePublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Make your page public",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setPublished(cmd.Context(), true)
		if err != nil {
			return err
		}
		printSuccess("Published")
		printProfileSummary(env)
		return nil
	},
}

var profileUnpublishCmd = &cobra.Command{
	Use:   "unpublish",
	Short: "Hide your page",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setPublished(cmd.Context(), false)
		if err != nil {
			return err
		}
		printSuccess("Unpublished")
		printProfileSummary(env)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileGenerateCmd)
	profileCmd.AddCommand(profilePublishCmd)
	profileCmd.AddCommand(profileUnpublishCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: "Set a configuration value in the config file.\n\nValid keys: " +
		strings.Join(config.ValidKeys(), ", ") +
		"\n\nSecrets are read from MEISHI_* environment variables only.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
