package cart

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/angelmondragon/greengrocer-web/pkg/types"
)

// StorageKey is the durable storage entry holding the cart snapshot.
const StorageKey = "cart-storage"

// SnapshotVersion is written with every snapshot. Older versions share the
// same layout and are read through the same sanitize step.
const SnapshotVersion = 1

type snapshot struct {
	Version int           `json:"version"`
	State   snapshotState `json:"state"`
}

type snapshotState struct {
	Items []Item `json:"items"`
}

type rawSnapshot struct {
	Version int `json:"version"`
	State   struct {
		Items []json.RawMessage `json:"items"`
	} `json:"state"`
}

type rawItem struct {
	Product  map[string]json.RawMessage `json:"product"`
	Quantity json.Number                `json:"quantity"`
}

// Encode serializes the cart in the versioned snapshot layout.
func Encode(c *Cart) (string, error) {
	snap := snapshot{Version: SnapshotVersion, State: snapshotState{Items: c.Items()}}
	if snap.State.Items == nil {
		snap.State.Items = []Item{}
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode rebuilds a cart from a stored snapshot. Rows without a product, with a
// non-numeric id, or with a quantity below 1 are dropped; anything unreadable
// yields an empty cart.
func Decode(raw string) *Cart {
	if strings.TrimSpace(raw) == "" {
		return &Cart{}
	}
	var snap rawSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return &Cart{}
	}
	if snap.Version > SnapshotVersion {
		return &Cart{}
	}

	items := make([]Item, 0, len(snap.State.Items))
	for _, entry := range snap.State.Items {
		if item, ok := sanitize(entry); ok {
			items = append(items, item)
		}
	}
	return New(items)
}

func sanitize(entry json.RawMessage) (Item, bool) {
	var ri rawItem
	dec := json.NewDecoder(bytes.NewReader(entry))
	dec.UseNumber()
	if err := dec.Decode(&ri); err != nil || len(ri.Product) == 0 {
		return Item{}, false
	}

	id, ok := productID(ri.Product["id"])
	if !ok {
		return Item{}, false
	}
	qty, err := strconv.Atoi(ri.Quantity.String())
	if err != nil || qty < 1 {
		return Item{}, false
	}

	ri.Product["id"] = json.RawMessage(strconv.FormatInt(id, 10))
	normalized, err := json.Marshal(ri.Product)
	if err != nil {
		return Item{}, false
	}
	var product types.Product
	if err := json.Unmarshal(normalized, &product); err != nil {
		return Item{}, false
	}
	return Item{Product: product, Quantity: qty}, true
}

// productID accepts a JSON number or a numeric string.
func productID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	text := string(raw)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
