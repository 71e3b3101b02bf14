package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evername/w3dns/core/record"
	"github.com/evername/w3dns/core/resolver/multiresolver"
)

func (c *command) initResolveCmd() (err error) {
	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a single domain name and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v := strings.ToLower(c.config.GetString(optionNameVerbosity))
			logger, err := newLogger(cmd, v)
			if err != nil {
				return fmt.Errorf("new logger: %w", err)
			}

			opts := c.resolverOptions(logger)
			// a one-shot lookup gains nothing from a cache
			opts = append(opts, multiresolver.WithNoCache())

			mr, err := multiresolver.New(opts...)
			if err != nil {
				return fmt.Errorf("new resolver: %w", err)
			}
			defer mr.Close()

			data, tag, err := mr.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}

			cmd.Printf("tag: %s\n", tag)
			switch data.Kind {
			case record.KindDomainString:
				cmd.Printf("target: %s\n", data.Value)
			case record.KindOnchainContract:
				cmd.Printf("content-type: %s\n", data.MimeType)
				cmd.Println(data.Value)
			default:
				cmd.Println(data.Value)
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.config.BindPFlags(cmd.Flags())
		},
	}

	c.setResolverFlags(cmd)

	cmd.SetOut(c.root.OutOrStdout())
	c.root.AddCommand(cmd)
	return nil
}
