package cmd

import (
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/foomo/releaseregistry/client"
	"github.com/foomo/releaseregistry/pkg/release"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func NewPublishCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "publish <name> <version> <file>...",
		Short: "Publish files as a new release",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, version, paths := args[0], args[1], args[2:]
			if !release.ValidName(name) {
				return errors.Errorf("invalid release name %q", name)
			}

			c, err := newClient(v)
			if err != nil {
				return err
			}

			files := make([]release.File, 0, len(paths))
			for _, p := range paths {
				f, err := os.Open(p)
				if err != nil {
					return err
				}
				defer f.Close()
				files = append(files, release.File{
					Name:        filepath.Base(p),
					ContentType: mime.TypeByExtension(filepath.Ext(p)),
					Content:     f,
				})
			}

			id, err := c.Publish(cmd.Context(), name, version, files)
			if err != nil {
				return err
			}
			zap.L().Info("published release",
				zap.String("name", name),
				zap.String("version", version),
				zap.String("id", id),
				zap.Int("files", len(files)),
			)
			return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
		},
	}
	addClientFlags(cmd.Flags(), v)
	return cmd
}

func NewListCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List releases page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			reply, err := c.List(cmd.Context(), pageFlag(v), perFlag(v))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reply)
		},
	}
	addClientFlags(cmd.Flags(), v)
	addPageFlag(cmd.Flags(), v)
	addPerFlag(cmd.Flags(), v)
	return cmd
}

func NewNamesCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "names",
		Short: "List release names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			reply, err := c.ListNames(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reply)
		},
	}
	addClientFlags(cmd.Flags(), v)
	return cmd
}

func NewVersionsCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "versions <name>",
		Short: "List the versions of a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			reply, err := c.ListVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reply)
		},
	}
	addClientFlags(cmd.Flags(), v)
	return cmd
}

func NewGetCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "get <name> <version>",
		Short: "Show a release",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			reply, err := c.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reply)
		},
	}
	addClientFlags(cmd.Flags(), v)
	return cmd
}

func NewDeleteCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "delete <name> <version>",
		Short: "Delete a release and its files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			zap.L().Info("deleted release", zap.String("name", args[0]), zap.String("version", args[1]))
			return nil
		},
	}
	addClientFlags(cmd.Flags(), v)
	return cmd
}

func addClientFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addServerFlag(flags, v)
	addUsernameFlag(flags, v)
	addPasswordFlag(flags, v)
}

func newClient(v *viper.Viper) (*client.Client, error) {
	var opts []client.Option
	if usernameFlag(v) != "" || passwordFlag(v) != "" {
		opts = append(opts, client.WithBasicAuth(usernameFlag(v), passwordFlag(v)))
	}
	return client.NewHTTPClient(serverFlag(v), opts...)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
