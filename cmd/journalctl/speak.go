package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lorettarehm/audhd.ai/internal/localstate"
	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/speech"
	"github.com/lorettarehm/audhd.ai/internal/speech/elevenlabs"
)

func newSpeakCmd(opts *options) *cobra.Command {
	var voice string
	cmd := &cobra.Command{
		Use:   "speak CONVERSATION_ID TEXT",
		Short: "Synthesize an assistant reply and append it with its audio",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			tts, err := elevenlabs.New(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, cfg.ElevenLabsVoiceID, "")
			if err != nil {
				return fmt.Errorf("speech unavailable: %w", err)
			}
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.store.SelectConversation(cmd.Context(), args[0]); err != nil {
				return err
			}

			dir := cfg.AudioDir
			if dir == "" {
				if dir, err = localstate.AudioDir(); err != nil {
					return err
				}
			}
			url, err := synthesize(cmd, tts, dir, args[1], voice)
			if err != nil {
				return err
			}
			m, err := s.store.AppendMessage(cmd.Context(), args[1], model.RoleAssistant, &url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.ID, url)
			return nil
		},
	}
	cmd.Flags().StringVar(&voice, "voice", "", "Voice id (defaults to JOURNAL_ELEVENLABS_VOICE_ID)")
	return cmd
}

func newAgentCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "agent [AGENT_ID]",
		Short: "Open an ElevenLabs conversational AI session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			el, err := elevenlabs.New(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, cfg.ElevenLabsVoiceID, "")
			if err != nil {
				return fmt.Errorf("speech unavailable: %w", err)
			}
			var agentID string
			if len(args) == 1 {
				agentID = args[0]
			}
			conv, err := el.CreateConversation(cmd.Context(), agentID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(conv.Raw))
			return nil
		},
	}
}

func synthesize(cmd *cobra.Command, tts speech.Synthesizer, dir, text, voice string) (string, error) {
	audio, err := tts.TextToSpeech(cmd.Context(), text, voice)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	return speech.SaveAudio(dir, audio)
}
