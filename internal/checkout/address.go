package checkout

import (
	"github.com/example/storefront/internal/shopapi"
	"github.com/example/storefront/internal/storage"
)

const addressKey = "checkout_address"

// AddressDraft persists the shipping address the shopper last entered, so an
// abandoned checkout resumes with the form filled in.
type AddressDraft struct {
	kv storage.KV
}

func NewAddressDraft(kv storage.KV) *AddressDraft {
	return &AddressDraft{kv: kv}
}

func (d *AddressDraft) Save(addr shopapi.ShippingAddress) error {
	return storage.SetJSON(d.kv, addressKey, addr)
}

// Load returns the saved draft, or ok=false when none is stored or the stored
// value cannot be read.
func (d *AddressDraft) Load() (shopapi.ShippingAddress, bool) {
	var addr shopapi.ShippingAddress
	if !storage.GetJSON(d.kv, addressKey, &addr) {
		return shopapi.ShippingAddress{}, false
	}
	return addr, true
}

func (d *AddressDraft) Clear() error {
	return d.kv.Delete(addressKey)
}
