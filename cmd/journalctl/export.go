package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lorettarehm/audhd.ai/internal/export"
	"github.com/lorettarehm/audhd.ai/internal/model"
)

const fetchConcurrency = 4

func newExportCmd(opts *options) *cobra.Command {
	var id, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write conversations as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			convs := s.store.Conversations()
			if id != "" {
				convs = filterConversation(convs, id)
				if len(convs) == 0 {
					return fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
				}
			}
			threads, err := fetchThreads(cmd.Context(), s, convs)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return export.WriteCSV(w, threads)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Export only this conversation")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func filterConversation(convs []model.Conversation, id string) []model.Conversation {
	for _, c := range convs {
		if c.ID == id {
			return []model.Conversation{c}
		}
	}
	return nil
}

// fetchThreads loads each conversation's messages, a few at a time, keeping
// the input order.
func fetchThreads(ctx context.Context, s *session, convs []model.Conversation) ([]export.Thread, error) {
	threads := make([]export.Thread, len(convs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, c := range convs {
		i, c := i, c
		g.Go(func() error {
			msgs, err := s.client.Messages().List(gctx, s.userID(), c.ID)
			if err != nil {
				return fmt.Errorf("messages of %s: %w", c.ID, err)
			}
			th := export.Thread{Conversation: c, Messages: make([]model.Message, 0, len(msgs))}
			for _, m := range msgs {
				th.Messages = append(th.Messages, *m)
			}
			threads[i] = th
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return threads, nil
}
