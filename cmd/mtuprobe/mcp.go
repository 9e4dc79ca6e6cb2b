package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hervehildenbrand/mtuprobe/internal/config"
	"github.com/hervehildenbrand/mtuprobe/internal/export"
	"github.com/hervehildenbrand/mtuprobe/internal/logging"
	"github.com/hervehildenbrand/mtuprobe/internal/ping"
)

const discoverToolName = "discover_mtu"

// NewMCPCmd creates the mcp subcommand serving MTU discovery over stdio.
func NewMCPCmd(version string) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve MTU discovery as an MCP tool over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// stdout carries the protocol, logs go to stderr only.
			logger := logging.New(cmd.ErrOrStderr(), verbose)
			s := newMCPServer(version, logger)

			stdio := server.NewStdioServer(s)
			err := stdio.Listen(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logs on stderr")

	return cmd
}

// newMCPServer builds the MCP server exposing the discover_mtu tool.
func newMCPServer(version string, logger zerolog.Logger) *server.MCPServer {
	s := server.NewMCPServer("mtuprobe", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTool(discoverTool(), discoverHandler(logger))
	return s
}

func discoverTool() mcp.Tool {
	return mcp.NewTool(discoverToolName,
		mcp.WithDescription("Find the largest unfragmented IPv4 ICMP payload to a host and the matching ethernet MTU"),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("Host name or IPv4 address to probe"),
		),
		mcp.WithNumber("count",
			mcp.Description("Echo requests per probed size"),
			mcp.DefaultNumber(4),
			mcp.Min(1),
		),
		mcp.WithNumber("max_size",
			mcp.Description("Upper bound of the payload search in bytes"),
			mcp.DefaultNumber(3000),
			mcp.Min(1),
		),
		mcp.WithString("mode",
			mcp.Description("Ping dialect"),
			mcp.Enum(string(ping.ModeAuto), string(ping.ModeGNU), string(ping.ModeNative)),
		),
		mcp.WithString("ping_bin",
			mcp.Description("Path or name of the ping binary"),
		),
	)
}

// discoverHandler runs one discovery per call and returns the JSON report.
// Failures are reported as tool errors, not protocol errors.
func discoverHandler(logger zerolog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		address, err := req.RequireString("address")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cfg := config.DefaultConfig()
		cfg.Address = address
		cfg.Count = req.GetInt("count", cfg.Count)
		cfg.MaxSize = req.GetInt("max_size", cfg.MaxSize)
		cfg.Mode = req.GetString("mode", cfg.Mode)
		cfg.PingBin = req.GetString("ping_bin", cfg.PingBin)
		if err := cfg.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		prober, err := newProber(&cfg, logger)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := newDiscoverFunc(&cfg, prober, logger)(ctx, nil, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("discovery failed: %v", err)), nil
		}

		var buf bytes.Buffer
		if err := export.NewJSONExporter().Export(&buf, res); err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}
