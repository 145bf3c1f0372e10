// Package profile reads buyer and seller profiles from the remote keyed
// store. Profiles are plain JSON blobs; this package only decodes them.
package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nourtarek555/BuyerMS3/internal/remotestore"
)

type Buyer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Seller struct {
	Name     string `json:"name"`
	ShopName string `json:"shopName"`
	Address  string `json:"address"`
}

// DisplayName prefers the shop name over the owner's name.
func (s Seller) DisplayName() string {
	if s.ShopName != "" {
		return s.ShopName
	}
	return s.Name
}

type Service struct {
	store remotestore.Store
}

func NewService(store remotestore.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Buyer(ctx context.Context, buyerID string) (Buyer, error) {
	var b Buyer
	if err := s.fetch(ctx, fmt.Sprintf("buyers/%s", buyerID), &b); err != nil {
		return Buyer{}, err
	}
	return b, nil
}

func (s *Service) Seller(ctx context.Context, sellerID string) (Seller, error) {
	var sl Seller
	if err := s.fetch(ctx, fmt.Sprintf("sellers/%s/profile", sellerID), &sl); err != nil {
		return Seller{}, err
	}
	return sl, nil
}

func (s *Service) fetch(ctx context.Context, path string, dst any) error {
	v, err := s.store.Get(ctx, path)
	if err != nil {
		return err
	}
	return decode(v, dst)
}

// decode handles the two shapes a record comes back in: a raw JSON blob
// from the real store, or an already-structured value from tests.
func decode(v any, dst any) error {
	switch raw := v.(type) {
	case string:
		return json.Unmarshal([]byte(raw), dst)
	case []byte:
		return json.Unmarshal(raw, dst)
	default:
		blob, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("encode profile record: %w", err)
		}
		return json.Unmarshal(blob, dst)
	}
}
