// Package memory is an in-process implementation of the user store. A single
// mutex serializes units of work; a failed unit of work restores the state
// captured when it started.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/khoahotran/user-management/internal/domain/user"
)

type state struct {
	users         map[int64]user.User
	settings      map[int64]user.Setting
	nextUserID    int64
	nextSettingID int64
}

func (s state) clone() state {
	c := state{
		users:         make(map[int64]user.User, len(s.users)),
		settings:      make(map[int64]user.Setting, len(s.settings)),
		nextUserID:    s.nextUserID,
		nextSettingID: s.nextSettingID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state state
}

var _ user.UnitOfWork = (*Store)(nil)

func NewStore() *Store {
	return &Store{state: state{
		users:    make(map[int64]user.User),
		settings: make(map[int64]user.Setting),
	}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo user.Repository) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = saved
			panic(p)
		}
		if err != nil {
			s.state = saved
		}
	}()

	return fn(ctx, &repo{st: &s.state})
}

func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context, repo user.Repository) error) error {
	return s.WithinTx(ctx, fn)
}

type repo struct {
	st *state
}

func copyUser(u user.User) *user.User {
	u.Settings = nil
	if u.MiddleName != nil {
		m := *u.MiddleName
		u.MiddleName = &m
	}
	if u.DeletedAt != nil {
		d := *u.DeletedAt
		u.DeletedAt = &d
	}
	return &u
}

func (r *repo) FindActiveByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := r.st.users[id]
	if !ok || !u.IsActive {
		return nil, user.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *repo) FindAnyByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *repo) ExistsBySSN(_ context.Context, ssn string) (bool, error) {
	for _, u := range r.st.users {
		if u.SSN == ssn {
			return true, nil
		}
	}
	return false, nil
}

func (r *repo) activeIDs() []int64 {
	ids := make([]int64, 0, len(r.st.users))
	for id, u := range r.st.users {
		if u.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *repo) ListActive(_ context.Context, limit, offset int) ([]*user.User, error) {
	ids := r.activeIDs()
	out := make([]*user.User, 0)
	if offset >= len(ids) {
		return out, nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	for _, id := range ids[offset:end] {
		out = append(out, copyUser(r.st.users[id]))
	}
	return out, nil
}

func (r *repo) CountActive(context.Context) (int64, error) {
	return int64(len(r.activeIDs())), nil
}

func (r *repo) Create(ctx context.Context, u *user.User) error {
	if exists, _ := r.ExistsBySSN(ctx, u.SSN); exists {
		return user.ErrDuplicateSSN
	}
	r.st.nextUserID++
	u.ID = r.st.nextUserID
	r.st.users[u.ID] = *copyUser(*u)
	return nil
}

func (r *repo) Update(_ context.Context, u *user.User) error {
	if _, ok := r.st.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.st.users[u.ID] = *copyUser(*u)
	return nil
}

func (r *repo) ListSettings(_ context.Context, userID int64) ([]user.Setting, error) {
	out := make([]user.Setting, 0)
	for _, s := range r.st.settings {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *repo) FindSettingByUserAndKey(_ context.Context, userID int64, key string) (*user.Setting, error) {
	for _, s := range r.st.settings {
		if s.UserID == userID && s.Key == key {
			found := s
			return &found, nil
		}
	}
	return nil, user.ErrSettingNotFound
}

func (r *repo) CreateSetting(ctx context.Context, s *user.Setting) error {
	if _, ok := r.st.users[s.UserID]; !ok {
		return fmt.Errorf("setting references unknown user %d", s.UserID)
	}
	if _, err := r.FindSettingByUserAndKey(ctx, s.UserID, s.Key); err == nil {
		return user.ErrDuplicateSetting
	}
	r.st.nextSettingID++
	s.ID = r.st.nextSettingID
	r.st.settings[s.ID] = *s
	return nil
}

func (r *repo) UpdateSetting(_ context.Context, s *user.Setting) error {
	if _, ok := r.st.settings[s.ID]; !ok {
		return user.ErrSettingNotFound
	}
	r.st.settings[s.ID] = *s
	return nil
}
