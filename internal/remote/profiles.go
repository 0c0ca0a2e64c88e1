package remote

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

func (c *Client) Profiles() store.Profiles { return profiles{c} }

// profiles always addresses the caller's own profile; userID is implied by the key.
type profiles struct{ c *Client }

func (ps profiles) GetOrCreate(ctx context.Context, _ string) (*model.Profile, error) {
	const op = "get_profile"
	resp, err := ps.c.do(ctx, op, true, func() (*resty.Response, error) {
		return ps.c.rc.R().SetContext(ctx).Get("/api/me/profile")
	})
	if err != nil {
		return nil, err
	}
	return decodeProfile(op, resp)
}

// Update is a full replace and is retried like a read.
func (ps profiles) Update(ctx context.Context, _ string, upd *model.ProfileUpdate) (*model.Profile, error) {
	const op = "update_profile"
	resp, err := ps.c.do(ctx, op, true, func() (*resty.Response, error) {
		return ps.c.rc.R().SetContext(ctx).SetBody(upd).Put("/api/me/profile")
	})
	if err != nil {
		return nil, err
	}
	return decodeProfile(op, resp)
}

func decodeProfile(op string, resp *resty.Response) (*model.Profile, error) {
	var p model.Profile
	if err := decode(op, resp, &p); err != nil {
		return nil, err
	}
	if err := model.ValidateProfile(&p); err != nil {
		return nil, fmt.Errorf("%s: invalid record: %w", op, err)
	}
	return &p, nil
}
