package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorettarehm/audhd.ai/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recently active first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return printConversations(cmd.OutOrStdout(), s.store.Conversations())
		},
	}
}

func newNewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "new [TITLE]",
		Short: "Start a conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := defaultTitle(time.Now())
			if len(args) == 1 {
				title = args[0]
			}
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := s.store.CreateConversation(cmd.Context(), title)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Title)
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show CONVERSATION_ID",
		Short: "Print a conversation's messages in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.store.SelectConversation(cmd.Context(), args[0]); err != nil {
				return err
			}
			snap := s.store.Snapshot()
			return printThread(cmd.OutOrStdout(), snap.Active, snap.Messages)
		},
	}
}

func newSayCmd(opts *options) *cobra.Command {
	var role, audioURL string
	cmd := &cobra.Command{
		Use:   "say CONVERSATION_ID TEXT",
		Short: "Append a message to a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}
			var audio *string
			if audioURL != "" {
				audio = &audioURL
			}
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.store.SelectConversation(cmd.Context(), args[0]); err != nil {
				return err
			}
			m, err := s.store.AppendMessage(cmd.Context(), args[1], r, audio)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.ID, m.Timestamp.Local().Format(timeLayout))
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleUser), "Message author: user or assistant")
	cmd.Flags().StringVar(&audioURL, "audio-url", "", "Audio recording to attach")
	return cmd
}

func newRmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm CONVERSATION_ID",
		Short: "Delete a conversation and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.store.DeleteConversation(cmd.Context(), args[0])
		},
	}
}

func defaultTitle(now time.Time) string {
	return "Chat " + now.Format("1/2/2006")
}

func printConversations(w io.Writer, convs []model.Conversation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, c := range convs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Title, c.UpdatedAt.Local().Format(timeLayout))
	}
	return tw.Flush()
}

func printThread(w io.Writer, c *model.Conversation, msgs []model.Message) error {
	if c != nil {
		_, _ = fmt.Fprintf(w, "# %s\n", c.Title)
	}
	for _, m := range msgs {
		line := fmt.Sprintf("[%s] %s: %s", m.Timestamp.Local().Format(timeLayout), m.Role, strings.TrimSpace(m.Content))
		if m.AudioURL != nil {
			line += " (audio: " + *m.AudioURL + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
