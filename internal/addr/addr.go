// Package addr derives entity and collection addresses.
//
// An address is a pure function of the owning scope and the member name, so
// "does X exist" is always "is there a row at the derived address". The
// derivation must stay bit-stable: changing it orphans every stored entity.
package addr

import (
	"crypto/sha256"
	"encoding/hex"

	"match-rating-engine/internal/model"
)

// Domain separation tags so a collection and an entity with identical
// inputs can never collide.
const (
	tagCollection byte = 0xC0
	tagEntity     byte = 0xE0
)

// derive hashes tag || scope || 0x00 || name. The zero byte ends the scope
// so ("ab","c") and ("a","bc") derive distinct addresses.
func derive(tag byte, scope, name string) model.Address {
	h := sha256.New()
	h.Write([]byte{tag})
	h.Write([]byte(scope))
	h.Write([]byte{0x00})
	h.Write([]byte(name))
	return model.Address(hex.EncodeToString(h.Sum(nil)))
}

// Collection derives the address of a collection from its owner account
// and collection name.
func Collection(owner model.Address, name string) model.Address {
	return derive(tagCollection, string(owner), name)
}

// Entity derives the address of an entity from its collection address
// and entity name.
func Entity(collection model.Address, name string) model.Address {
	return derive(tagEntity, string(collection), name)
}
