package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/talentlink/talentlink/internal/security/statetoken"
)

const referralAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func main() {
	root := &cobra.Command{
		Use:           "tlctl",
		Short:         "Operational helpers for the TalentLink identity service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(stateCmd(), secretCmd(), referralCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func stateCmd() *cobra.Command {
	var secret, uid string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Sign and inspect OAuth state tokens",
	}
	cmd.PersistentFlags().StringVar(&secret, "secret", os.Getenv("STATE_SECRET"), "HMAC secret (env STATE_SECRET)")
	cmd.PersistentFlags().DurationVar(&ttl, "ttl", statetoken.DefaultTTL, "token lifetime used for validation")

	sign := &cobra.Command{
		Use:   "sign",
		Short: "Mint a signed state token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or STATE_SECRET is required")
			}
			if uid == "" {
				return errors.New("--uid is required")
			}
			token, err := statetoken.New(secret, ttl).Encode(statetoken.Payload{UserID: uid})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	sign.Flags().StringVar(&uid, "uid", "", "user id to embed")

	inspect := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a state token and print its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or STATE_SECRET is required")
			}
			p, err := statetoken.New(secret, ttl).Decode(args[0])
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(map[string]any{
				"uid":       p.UserID,
				"nonce":     p.Nonce,
				"issued_at": time.Unix(p.IssuedAt, 0).UTC().Format(time.RFC3339),
			}, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.AddCommand(sign, inspect)
	return cmd
}

func secretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate secrets",
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a random base64 key (state secret, token crypt key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := make([]byte, size)
			if _, err := rand.Read(b); err != nil {
				return err
			}
			fmt.Println(base64.StdEncoding.EncodeToString(b))
			return nil
		},
	}
	newCmd.Flags().IntVar(&size, "bytes", 32, "key length in bytes")

	cmd.AddCommand(newCmd)
	return cmd
}

func referralCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "referral",
		Short: "Referral code helpers",
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate an 8-character referral code",
		RunE: func(cmd *cobra.Command, args []string) error {
			code := make([]byte, 8)
			raw := make([]byte, 8)
			if _, err := rand.Read(raw); err != nil {
				return err
			}
			for i, b := range raw {
				code[i] = referralAlphabet[int(b)%len(referralAlphabet)]
			}
			fmt.Println(string(code))
			return nil
		},
	}

	cmd.AddCommand(newCmd)
	return cmd
}
