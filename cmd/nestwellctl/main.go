// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command nestwellctl is the operator CLI for the NestWell concierge.
//
// Usage:
//
//	# Send a message to a running server
//	nestwellctl chat --user u-1 "Help me furnish a lounge."
//
//	# Compute the containment rate from the interaction store
//	nestwellctl containment --dir ./data/interactions
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/AleutianAI/nestwell/services/memory"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	chatUser  string
	chatAgent bool

	memoryDir string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nestwellctl",
		Short: "Operator CLI for the NestWell concierge",
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Concierge server base URL")

	chatCmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message to the concierge and print the outcome",
		Args:  cobra.ExactArgs(1),
		Run:   runChatCommand,
	}
	chatCmd.Flags().StringVar(&chatUser, "user", "u-demo", "User ID to send as")
	chatCmd.Flags().BoolVar(&chatAgent, "agent", false, "Use the agent (tool-calling) endpoint")

	containmentCmd := &cobra.Command{
		Use:   "containment",
		Short: "Compute the containment rate from the interaction store",
		Long: "Reads the interaction store directly and reports how many sessions were " +
			"contained, meaning resolved by a business flow (marketing_consult, " +
			"sales_assist, cs_resolution) rather than falling through to the knowledge base.",
		Run: runContainmentCommand,
	}
	containmentCmd.Flags().StringVar(&memoryDir, "dir", "./data/interactions", "Interaction store directory")

	rootCmd.AddCommand(chatCmd, containmentCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Reply       string   `json:"reply"`
	OutcomeTags []string `json:"outcome_tags"`
	TraceID     string   `json:"trace_id"`
}

func runChatCommand(cmd *cobra.Command, args []string) {
	path := "/v1/concierge/chat"
	if chatAgent {
		path = "/v1/concierge/agent/chat"
	}

	body, err := json.Marshal(chatRequest{UserID: chatUser, Message: args[0]})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(serverURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, raw)
		os.Exit(1)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Reply:    %s\n", out.Reply)
	fmt.Printf("Tags:     %v\n", out.OutcomeTags)
	fmt.Printf("Trace ID: %s\n", out.TraceID)
}

// containedIntents are the flows that count as contained: the concierge
// resolved the session itself instead of deflecting to the knowledge base.
var containedIntents = map[string]bool{
	"marketing_consult": true,
	"sales_assist":      true,
	"cs_resolution":     true,
}

func runContainmentCommand(cmd *cobra.Command, args []string) {
	store, err := memory.Open(memoryDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	total, contained := 0, 0
	err = store.ForEach(cmd.Context(), func(in memory.Interaction) error {
		total++
		if containedIntents[in.Intent] {
			contained++
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rate := 0.0
	if total > 0 {
		rate = float64(contained) / float64(total)
	}
	fmt.Printf("{\"sessions\": %d, \"contained\": %d, \"containment_rate\": %.3f}\n", total, contained, rate)
}
