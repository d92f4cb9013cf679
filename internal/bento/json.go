package bento

import "encoding/json"

// Doc is a lightweight handle that makes one stored document satisfy
// encoding/json.Marshaler, so a DocID can be embedded directly in an
// envelope (SPEC_FULL.md §6.4) without first decoding it back through Get.
type Doc struct {
	store *Store
	id    DocID
}

// At returns a Doc handle for id.
func (s *Store) At(id DocID) Doc { return Doc{store: s, id: id} }

// MarshalJSON serializes the stored tree directly from the pool.
func (d Doc) MarshalJSON() ([]byte, error) {
	v, ok := d.store.Get(d.id)
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON replaces this slot's tree by decoding raw and re-flattening
// it into the store's pools. The DocID is unchanged.
func (d Doc) UnmarshalJSON(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	idx, err := d.store.putNode(v)
	if err != nil {
		return err
	}
	d.store.docs[d.id] = idx
	return d.store.save()
}
