package app

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

// PlaylistService builds prize playlists. A playlist is created at most
// once per (session, winner) and never partially.
type PlaylistService struct {
	store     core.Store
	source    core.TrackSource
	locks     *KeyedMutex
	minTracks int
	maxTracks int
	pick      func(n int) int
}

func NewPlaylistService(store core.Store, source core.TrackSource, locks *KeyedMutex, minTracks, maxTracks int) *PlaylistService {
	if minTracks <= 0 {
		minTracks = 5
	}
	if maxTracks < minTracks {
		maxTracks = minTracks
	}
	return &PlaylistService{
		store:     store,
		source:    source,
		locks:     locks,
		minTracks: minTracks,
		maxTracks: maxTracks,
		pick:      rand.IntN,
	}
}

// CreateWinnerPlaylist reports whether a playlist was written by this call.
// The catalog is queried outside the transaction; the existence check is
// repeated inside it before anything is written.
func (s *PlaylistService) CreateWinnerPlaylist(ctx context.Context, sid domain.GameSessionID, winner domain.UserID, genre domain.Genre) (bool, error) {
	unlock := s.locks.Lock(playlistKey(string(sid) + ":" + string(winner)))
	defer unlock()

	logger := log.With().Str("module", "app.playlists").Str("session", string(sid)).Str("winner", string(winner)).Logger()

	exists, err := s.store.Playlists().ExistsForSession(ctx, sid, winner)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Debug().Msg("playlist already exists")
		return false, nil
	}

	want := s.minTracks + s.pick(s.maxTracks-s.minTracks+1)
	fetched, err := s.source.FetchTracksByGenre(ctx, genre, want)
	if err != nil {
		return false, err
	}
	fetched = usableUnique(fetched)
	if len(fetched) == 0 {
		return false, fmt.Errorf("%w: no tracks for %s", domain.ErrInsufficientTracks, genre)
	}

	created := false
	err = s.store.Tx(ctx, func(tx core.Store) error {
		exists, err := tx.Playlists().ExistsForSession(ctx, sid, winner)
		if err != nil || exists {
			return err
		}
		pl := domain.NewRewardPlaylist(sid, winner, genre)
		if err := tx.Playlists().Create(ctx, pl); err != nil {
			return err
		}

		ids := make([]string, len(fetched))
		for i, t := range fetched {
			ids[i] = t.ExternalID
		}
		known, err := tx.Tracks().FindByExternalIDs(ctx, ids)
		if err != nil {
			return err
		}
		byExternal := make(map[string]domain.TrackID, len(known))
		for _, t := range known {
			byExternal[t.ExternalID] = t.ID
		}

		var fresh []domain.Track
		links := make([]domain.PlaylistTrack, 0, len(fetched))
		for i, t := range fetched {
			id, ok := byExternal[t.ExternalID]
			if !ok {
				id = domain.TrackID(domain.NewID())
				fresh = append(fresh, domain.Track{
					ID:         id,
					ExternalID: t.ExternalID,
					Title:      t.Title,
					Artist:     t.Artist,
					PreviewURL: t.PreviewURL,
					CoverURL:   t.CoverURL,
				})
			}
			links = append(links, domain.PlaylistTrack{PlaylistID: pl.ID, TrackID: id, Position: i})
		}
		if err := tx.Tracks().CreateBatch(ctx, fresh); err != nil {
			return err
		}
		if err := tx.PlaylistTracks().CreateBatch(ctx, links); err != nil {
			return err
		}
		created = true
		logger.Info().Str("playlist", string(pl.ID)).Int("tracks", len(links)).Int("new_tracks", len(fresh)).Msg("reward playlist created")
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func usableUnique(tracks []core.SourceTrack) []core.SourceTrack {
	seen := make(map[string]struct{}, len(tracks))
	out := tracks[:0:0]
	for _, t := range tracks {
		if !t.Usable() {
			continue
		}
		if _, dup := seen[t.ExternalID]; dup {
			continue
		}
		seen[t.ExternalID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (s *PlaylistService) UserPlaylists(ctx context.Context, user domain.UserID) ([]domain.Playlist, error) {
	return s.store.Playlists().ListByUser(ctx, user)
}

func (s *PlaylistService) Playlist(ctx context.Context, id domain.PlaylistID) (*domain.Playlist, error) {
	return s.store.Playlists().Get(ctx, id)
}
