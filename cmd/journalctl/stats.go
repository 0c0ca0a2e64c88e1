package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorettarehm/audhd.ai/internal/analytics"
	"github.com/lorettarehm/audhd.ai/internal/model"
)

func newStatsCmd(opts *options) *cobra.Command {
	var rangeFlag string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise journal activity as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := analytics.ParseRange(rangeFlag)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			convs := s.store.Conversations()
			threads, err := fetchThreads(cmd.Context(), s, convs)
			if err != nil {
				return err
			}
			byConversation := make(map[string][]model.Message, len(threads))
			for _, th := range threads {
				byConversation[th.Conversation.ID] = th.Messages
			}

			rep := analytics.Compute(time.Now(), convs, byConversation, r)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().StringVarP(&rangeFlag, "range", "r", string(analytics.RangeMonth), "Daily activity window: week, month or all")
	return cmd
}
