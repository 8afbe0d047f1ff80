package moviematch

import (
	"time"

	"github.com/oggyb/moviematch/internal/model"
)

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func MovieFromModel(m model.Movie) *Movie {
	return &Movie{
		Id:         m.ID,
		Title:      m.Title,
		Year:       int32(m.Year),
		Runtime:    int32(m.Runtime),
		Director:   m.Director,
		Cast:       m.Cast,
		Synopsis:   m.Synopsis,
		PosterUrl:  m.PosterURL,
		TrailerUrl: m.TrailerURL,
		Genres:     m.Genres,
		Rating:     m.Rating,
		RtScore:    m.RTScore,
		ImdbRating: m.IMDbRating,
	}
}

func (m *Movie) ToModel() model.Movie {
	return model.Movie{
		ID:         m.Id,
		Title:      m.Title,
		Year:       int(m.Year),
		Runtime:    int(m.Runtime),
		Director:   m.Director,
		Cast:       m.Cast,
		Synopsis:   m.Synopsis,
		PosterURL:  m.PosterUrl,
		TrailerURL: m.TrailerUrl,
		Genres:     m.Genres,
		Rating:     m.Rating,
		RTScore:    m.RtScore,
		IMDbRating: m.ImdbRating,
	}
}

func SwipeFromModel(s model.Swipe) *Swipe {
	return &Swipe{
		Id:        s.ID,
		UserId:    s.UserID,
		MovieId:   s.MovieID,
		Kind:      string(s.Kind),
		CreatedAt: millis(s.CreatedAt),
	}
}

func (s *Swipe) ToModel() model.Swipe {
	return model.Swipe{
		ID:        s.Id,
		UserID:    s.UserId,
		MovieID:   s.MovieId,
		Kind:      model.Kind(s.Kind),
		CreatedAt: fromMillis(s.CreatedAt),
	}
}

func CoupleFromModel(c model.Couple) *Couple {
	return &Couple{
		Id:         c.ID,
		InviteCode: c.InviteCode,
		User1Id:    c.User1ID,
		User2Id:    c.User2ID,
		CreatedAt:  millis(c.CreatedAt),
	}
}

func (c *Couple) ToModel() model.Couple {
	return model.Couple{
		ID:         c.Id,
		InviteCode: c.InviteCode,
		User1ID:    c.User1Id,
		User2ID:    c.User2Id,
		CreatedAt:  fromMillis(c.CreatedAt),
	}
}

func MatchFromModel(m model.Match) *Match {
	out := &Match{
		Id:        m.ID,
		CoupleId:  m.CoupleID,
		MovieId:   m.MovieID,
		CreatedAt: millis(m.CreatedAt),
		Watched:   m.Watched,
	}
	if m.WatchedAt != nil {
		ms := m.WatchedAt.UnixMilli()
		out.WatchedAt = &ms
	}
	if m.Movie != nil {
		out.Movie = MovieFromModel(*m.Movie)
	}
	return out
}

func (m *Match) ToModel() model.Match {
	out := model.Match{
		ID:        m.Id,
		CoupleID:  m.CoupleId,
		MovieID:   m.MovieId,
		CreatedAt: fromMillis(m.CreatedAt),
		Watched:   m.Watched,
	}
	if m.WatchedAt != nil {
		t := fromMillis(*m.WatchedAt)
		out.WatchedAt = &t
	}
	if m.Movie != nil {
		mv := m.Movie.ToModel()
		out.Movie = &mv
	}
	return out
}

func UserFromModel(u model.User) *User {
	return &User{Id: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

func (u *User) ToModel() model.User {
	return model.User{ID: u.Id, Email: u.Email, DisplayName: u.DisplayName}
}
