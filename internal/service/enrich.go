package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"feedback_responder/internal/config"
	"feedback_responder/internal/domain"
	"feedback_responder/internal/marketplace"
)

// Upstream attribute names matched exactly; first occurrence wins.
const (
	attrColor   = "Color"
	attrCountry = "Country of manufacture"
)

// EnrichService fills product rows with card metadata fetched in batches
// from the content API. A failed chunk is logged and skipped; the remaining
// chunks still run.
type EnrichService struct {
	market   Marketplace
	products ProductStore
	logger   *slog.Logger
	cfg      config.ImportConfig
}

func NewEnrichService(
	market Marketplace,
	products ProductStore,
	logger *slog.Logger,
	cfg config.ImportConfig,
) *EnrichService {
	return &EnrichService{
		market:   market,
		products: products,
		logger:   logger.With("component", "enrich"),
		cfg:      cfg,
	}
}

// EnrichProducts fetches card metadata for the given item ids in chunks of
// at most the upstream batch limit and updates the matching local products.
func (s *EnrichService) EnrichProducts(ctx context.Context, shop *domain.Shop, nmIDs []int64) *domain.EnrichStats {
	stats := &domain.EnrichStats{Requested: len(nmIDs)}

	for start := 0; start < len(nmIDs); start += s.cfg.CardChunkSize {
		end := min(start+s.cfg.CardChunkSize, len(nmIDs))
		chunk := nmIDs[start:end]

		cards, err := s.market.FetchCards(ctx, shop.APIKey, chunk, s.cfg.CardChunkSize)
		if err != nil {
			s.logger.Error("card fetch failed",
				"shop_id", shop.ID,
				"chunk_size", len(chunk),
				"error", err,
			)
			stats.FailedChunks++
			continue
		}

		for i := range cards {
			updated, err := s.applyCard(ctx, shop, &cards[i])
			if err != nil {
				s.logger.Error("card apply failed",
					"shop_id", shop.ID,
					"nm_id", cards[i].NmID,
					"error", err,
				)
				continue
			}
			if updated {
				stats.Updated++
			} else {
				stats.Missing++
			}
		}
	}

	return stats
}

func (s *EnrichService) applyCard(ctx context.Context, shop *domain.Shop, card *marketplace.Card) (bool, error) {
	product, err := s.products.GetByNmID(ctx, shop.ID, card.NmID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, nil
	}

	product.Description = optional(card.Description)
	product.Characteristics = serializeCharacteristics(card.Characteristics)
	product.Color = firstAttributeValue(card.Characteristics, attrColor)
	product.Country = firstAttributeValue(card.Characteristics, attrCountry)
	product.ImageURL = firstBigPhoto(card.Photos)
	if card.SubjectName != "" {
		product.Category = optional(card.SubjectName)
	}

	if err := s.products.UpdateCard(ctx, product); err != nil {
		return false, err
	}
	return true, nil
}

// firstAttributeValue returns the first value of the first attribute whose
// name matches exactly.
func firstAttributeValue(chars []marketplace.Characteristic, name string) *string {
	for _, c := range chars {
		if c.Name == name && len(c.Value) > 0 {
			v := c.Value[0]
			return &v
		}
	}
	return nil
}

func serializeCharacteristics(chars []marketplace.Characteristic) *string {
	if len(chars) == 0 {
		return nil
	}
	data, err := json.Marshal(chars)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func firstBigPhoto(photos []marketplace.CardPhoto) *string {
	for _, p := range photos {
		if p.Big != "" {
			return optional(p.Big)
		}
	}
	return nil
}
