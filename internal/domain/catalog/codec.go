package catalog

import (
	"encoding/json"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/parvej/showcase/internal/remotestore"
)

// EncodeStrings serializes an ordered string sequence to the JSON-array
// string form the remote store persists for tags and images.
func EncodeStrings(values []string) string {
	var e jx.Encoder
	e.ArrStart()
	for _, v := range values {
		e.Str(v)
	}
	e.ArrEnd()
	return e.String()
}

// DecodeStrings parses the persisted string-encoded sequence back into an
// ordered slice. Absent or unparseable input decodes to an empty sequence.
func DecodeStrings(s string) []string {
	if s == "" {
		return nil
	}
	d := jx.DecodeStr(s)
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		v, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil
	}
	return out
}

// priceFromField converts the loosely-typed price field of a remote record.
// JSON numbers arrive as float64; older records may carry strings.
func priceFromField(v any) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func collectionFromRecord(rec remotestore.Record) Collection {
	return Collection{
		ID:      rec.ID(),
		Title:   rec.String("title"),
		Details: rec.String("details"),
		Cover:   rec.String("cover"),
		Pinned:  rec.Bool("pinned"),
	}
}

func (c Collection) fields() remotestore.Record {
	return remotestore.Record{
		"title":   c.Title,
		"details": c.Details,
		"cover":   c.Cover,
		"pinned":  c.Pinned,
	}
}

func productFromRecord(rec remotestore.Record) Product {
	return Product{
		ID:           rec.ID(),
		CollectionID: rec.String("collectionId"),
		Title:        rec.String("title"),
		Price:        priceFromField(rec["price"]),
		Details:      rec.String("details"),
		Link:         rec.String("link"),
		Tags:         DecodeStrings(rec.String("tags")),
		Images:       DecodeStrings(rec.String("images")),
		ShopName:     rec.String("shopName"),
	}
}

func (p Product) fields() remotestore.Record {
	return remotestore.Record{
		"collectionId": p.CollectionID,
		"title":        p.Title,
		"price":        p.Price.InexactFloat64(),
		"details":      p.Details,
		"link":         p.Link,
		"tags":         EncodeStrings(p.Tags),
		"images":       EncodeStrings(p.Images),
		"shopName":     p.ShopName,
	}
}

func shopFromRecord(rec remotestore.Record) Shop {
	return Shop{
		ID:   rec.ID(),
		Name: rec.String("name"),
	}
}
