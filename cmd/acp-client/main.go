// Command acp-client is a reference ACP client: it spawns a configured
// agent subprocess, drives a single session/new + session/prompt turn
// from the command line, and prints the agent's streamed reply. Run it
// against cmd/acp-agent or any other ACP-compatible agent binary.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/agentclientprotocol/acp-go/acp"
	"github.com/agentclientprotocol/acp-go/internal/agentconn"
	"github.com/agentclientprotocol/acp-go/internal/wsduplex"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		agentName  string
		configPath string
		cwd        string
		debug      bool
		wsURL      string
	)

	cmd := &cobra.Command{
		Use:   "acp-client [prompt text...]",
		Short: "Reference Agent Client Protocol client",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(agentName, configPath, cwd, wsURL, strings.Join(args, " "), debug)
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "opencode", "name of the configured agent to spawn")
	cmd.Flags().StringVar(&configPath, "config", agentconn.ConfigPath(), "path to the client config file")
	cmd.Flags().StringVar(&cwd, "cwd", ".", "working directory to hand the agent on session/new")
	cmd.Flags().StringVar(&wsURL, "ws-url", "", "dial a running agent over WebSocket at this ws:// URL instead of spawning --agent as a subprocess")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	viper.SetEnvPrefix("ACP_GO")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("agent", cmd.Flags().Lookup("agent"))
	_ = viper.BindPFlag("debug", cmd.Flags().Lookup("debug"))

	return cmd
}

func run(agentName, configPath, cwd, wsURL, prompt string, debug bool) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("acp-client: logger: %w", err)
	}
	defer log.Sync()

	handler := newCLIHandler(log)
	ctx := context.Background()

	rpc, closeRPC, err := dialAgent(ctx, wsURL, agentName, configPath, cwd, handler, log)
	if err != nil {
		return err
	}
	defer closeRPC()

	session, err := rpc.NewSession(ctx, acp.SessionNewParams{Cwd: cwd})
	if err != nil {
		return fmt.Errorf("acp-client: new session: %w", err)
	}

	result, err := rpc.Prompt(ctx, acp.SessionPromptParams{
		SessionID: session.SessionID,
		Prompt:    []acp.ContentBlock{{Type: acp.ContentText, Text: prompt}},
	})
	if err != nil {
		return fmt.Errorf("acp-client: prompt: %w", err)
	}

	fmt.Println()
	log.Info("turn finished", zap.String("stop_reason", string(result.StopReason)))
	return nil
}

// dialAgent returns the session/prompt-capable connection to drive: a
// subprocess spawned through agentconn.Manager by default, or a direct
// WebSocket dial when wsURL is set, for talking to an agent already
// serving --ws-addr rather than one this process spawns itself.
func dialAgent(ctx context.Context, wsURL, agentName, configPath, cwd string, handler acp.ClientHandler, log *zap.Logger) (*acp.ClientSideConnection, func(), error) {
	if wsURL != "" {
		d, err := wsduplex.Dial(wsURL)
		if err != nil {
			return nil, nil, fmt.Errorf("acp-client: dial %s: %w", wsURL, err)
		}
		conn := acp.NewClientSideConnection(d, handler, log)
		if _, err := conn.Initialize(ctx, acp.InitializeParams{
			ProtocolVersion: 1,
			ClientCapabilities: acp.ClientCapabilities{
				FS:       acp.FSCapabilities{ReadTextFile: true, WriteTextFile: true},
				Terminal: true,
			},
		}); err != nil {
			conn.Close()
			_ = d.Close()
			return nil, nil, fmt.Errorf("acp-client: initialize: %w", err)
		}
		return conn, func() { _ = d.Close() }, nil
	}

	cfg, err := agentconn.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("acp-client: load config: %w", err)
	}
	manager := agentconn.NewManager(cfg, handler, log)

	conn, err := manager.Connect(ctx, agentName, cwd)
	if err != nil {
		manager.DisconnectAll()
		return nil, nil, fmt.Errorf("acp-client: connect %s: %w", agentName, err)
	}
	return conn.Conn, func() { manager.DisconnectAll() }, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
