package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/16Mu/wind-chime-player-sub002/internal/config"
	"github.com/16Mu/wind-chime-player-sub002/internal/playback"
	"github.com/16Mu/wind-chime-player-sub002/internal/player"
	"github.com/16Mu/wind-chime-player-sub002/internal/source"
	"github.com/16Mu/wind-chime-player-sub002/internal/state"
	"github.com/16Mu/wind-chime-player-sub002/internal/stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return errors.New("usage: windchime <track> [track...]")
	}

	level := slog.LevelInfo
	if os.Getenv("WINDCHIME_DEBUG") != "" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var stateMgr *state.Manager
	if cfg.ShouldRestoreState() {
		stateMgr, err = state.Open()
		if err != nil {
			log.Warn("state database unavailable, continuing without it", "err", err)
		} else {
			defer stateMgr.Close()
		}
	}

	streaming, err := stream.ConnectMPV(cfg.MpvSocket, log)
	if err != nil {
		return fmt.Errorf("streaming engine: %w", err)
	}
	defer streaming.Close()

	src := source.NewRouter(source.NewFile(), source.NewHTTP(cfg.FetchTimeoutDuration()))
	buffered := player.New(log)

	opts := []playback.Option{playback.WithLogger(log)}
	if d := cfg.TickIntervalDuration(); d > 0 {
		opts = append(opts, playback.WithTickInterval(d))
	}
	svc := playback.New(streaming, buffered, src, opts...)
	defer svc.Close()

	volume := cfg.Volume
	if stateMgr != nil {
		if ps, err := stateMgr.GetPlayerState(); err == nil {
			volume = ps.Volume
		}
	}
	svc.SetVolume(volume)

	playlist := buildPlaylist(os.Args[1:])
	if err := svc.Play(playlist[0], playlist); err != nil {
		return err
	}

	if stateMgr != nil {
		if lp, err := stateMgr.GetLastPlayed(); err == nil && lp != nil &&
			lp.Locator == playlist[0].Locator && lp.Position > 0 {
			if err := svc.SeekTo(lp.Position); err != nil {
				log.Debug("restore last position", "err", err)
			}
		}
	}

	sub := svc.Subscribe()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			if stateMgr != nil {
				_ = stateMgr.SavePlayerState(state.PlayerState{Volume: svc.Volume()})
			}
			return svc.Stop()

		case e := <-sub.EngineChanged:
			log.Info("engine changed", "engine", e.Engine.String())

		case e := <-sub.PositionChanged:
			if stateMgr != nil {
				if t := svc.CurrentTrack(); t != nil {
					stateMgr.SaveLastPlayed(state.LastPlayed{
						Locator:  t.Locator,
						Position: e.Position,
					})
				}
			}

		case e := <-sub.Progress:
			log.Debug("loading", "percent", e.Percent)

		case e := <-sub.TrackEnded:
			log.Info("track ended", "locator", e.Track.Locator)
			if err := svc.Next(); err != nil {
				if errors.Is(err, stream.ErrEndOfPlaylist) {
					return svc.Stop()
				}
				return err
			}

		case e := <-sub.Error:
			log.Warn("playback degraded", "op", e.Operation, "err", e.Err)

		case <-sub.Done:
			return nil
		}
	}
}

func buildPlaylist(locators []string) []playback.Track {
	tracks := make([]playback.Track, len(locators))
	for i, loc := range locators {
		title := filepath.Base(loc)
		tracks[i] = playback.Track{
			ID:      int64(i + 1),
			Locator: loc,
			Title:   title,
		}
	}
	return tracks
}
