package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func orderPath(arg string, suffix string) (string, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("invalid order id %q", arg)
	}
	return fmt.Sprintf("/api/admin/orders/%d%s", id, suffix), nil
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func call(cmd *cobra.Command, opts *clientOptions, method, path string, body any) error {
	var raw json.RawMessage
	if err := newAPIClient(opts).do(cmd.Context(), method, path, body, &raw); err != nil {
		if isAPIStatus(err, http.StatusUnauthorized) {
			return fmt.Errorf("%w (run reconcilectl login)", err)
		}
		return err
	}
	return printJSON(cmd.OutOrStdout(), raw)
}

func loginCmd(opts *clientOptions) *cobra.Command {
	var operator, secret string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Issue an operator token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Token string `json:"token"`
			}
			req := map[string]string{"operator": operator, "secret": secret}
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/api/admin/token", req, &resp); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return err
		},
	}

	cmd.Flags().StringVarP(&operator, "operator", "o", envOr("USER", "operator"), "Operator name")
	cmd.Flags().StringVarP(&secret, "secret", "s", envOr("RECONCILECTL_SECRET", ""), "Operator secret")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func showCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [order-id]",
		Short: "Show an order with its settlements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := orderPath(args[0], "")
			if err != nil {
				return err
			}
			return call(cmd, opts, http.MethodGet, path, nil)
		},
	}
}

func refreshCmd(opts *clientOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "refresh [order-id...]",
		Short: "Reconcile orders against the provider",
		Long: `Reconcile one or more orders against the provider.
A single id uses the per-order endpoint, several ids or --all run one bulk refresh.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("--all does not take order ids")
			}
			if !all && len(args) == 0 {
				return fmt.Errorf("pass order ids or --all")
			}
			if len(args) == 1 {
				path, err := orderPath(args[0], "/refresh")
				if err != nil {
					return err
				}
				return call(cmd, opts, http.MethodPost, path, nil)
			}

			ids := make([]int64, 0, len(args))
			for _, a := range args {
				id, err := strconv.ParseInt(a, 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid order id %q", a)
				}
				ids = append(ids, id)
			}
			return call(cmd, opts, http.MethodPost, "/api/admin/orders/refresh", map[string][]int64{"ids": ids})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Refresh every eligible order")

	return cmd
}

func refundCmd(opts *clientOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "refund [order-id]",
		Short: "Refund the rest of the order charge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := orderPath(args[0], "/refund")
			if err != nil {
				return err
			}
			return call(cmd, opts, http.MethodPost, path, map[string]string{"reason": reason})
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Refund reason")

	return cmd
}

func overrideCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "override [order-id] [status]",
		Short: "Set an order status without moving money",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := orderPath(args[0], "/status")
			if err != nil {
				return err
			}
			return call(cmd, opts, http.MethodPut, path, map[string]string{"status": args[1]})
		},
	}
}

func refillCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refill [order-id]",
		Short: "Ask the provider to refill an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := orderPath(args[0], "/refill")
			if err != nil {
				return err
			}
			return call(cmd, opts, http.MethodPost, path, nil)
		},
	}
}

func balanceCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [user-id]",
		Short: "Show a user balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			return call(cmd, opts, http.MethodGet, fmt.Sprintf("/api/admin/users/%d/balance", id), nil)
		},
	}
}
