package prepared

import (
	"fmt"

	"github.com/bitfsorg/walletsdk-go/block"
)

// unlockChecker matches unlocks to inputs position by position. Key owners
// need a verifying signature from the owning key, or a reference to the
// earlier signature of the same key. Alias and NFT owners need a reference
// to the earlier input that holds the alias or NFT.
type unlockChecker struct {
	p   *PreparedTransactionData
	msg [32]byte

	sigs    map[block.KeyHash]uint16
	aliases map[block.AliasID]uint16
	nfts    map[block.NftID]uint16
}

func newUnlockChecker(p *PreparedTransactionData) *unlockChecker {
	return &unlockChecker{
		p:       p,
		msg:     p.SigningHash(),
		sigs:    make(map[block.KeyHash]uint16),
		aliases: make(map[block.AliasID]uint16),
		nfts:    make(map[block.NftID]uint16),
	}
}

func (c *unlockChecker) check(unlocks []block.Unlock) error {
	at := c.p.essence.CreationTime
	for i, u := range unlocks {
		rec := c.p.inputs[i]
		pos := uint16(i)
		if u == nil {
			return mismatch(i, "unlock is nil")
		}

		switch owner := rec.Output.UnlockAddress(at).(type) {
		case *block.KeyAddress:
			if err := c.checkKey(pos, owner, u); err != nil {
				return err
			}
		case *block.AliasAddress:
			ref, ok := u.(*block.AliasUnlock)
			if !ok {
				return mismatch(i, "owner is alias %s, got unlock kind %d", owner.AliasID, u.Kind())
			}
			if ref == nil {
				return mismatch(i, "alias unlock is nil")
			}
			if holder, found := c.aliases[owner.AliasID]; !found || holder != ref.Reference {
				return mismatch(i, "alias unlock references %d, alias %s is not held there", ref.Reference, owner.AliasID)
			}
		case *block.NftAddress:
			ref, ok := u.(*block.NftUnlock)
			if !ok {
				return mismatch(i, "owner is nft %s, got unlock kind %d", owner.NftID, u.Kind())
			}
			if ref == nil {
				return mismatch(i, "nft unlock is nil")
			}
			if holder, found := c.nfts[owner.NftID]; !found || holder != ref.Reference {
				return mismatch(i, "nft unlock references %d, nft %s is not held there", ref.Reference, owner.NftID)
			}
		case nil:
			return mismatch(i, "output kind %d cannot be unlocked", rec.Output.Kind())
		default:
			return mismatch(i, "unsupported owner kind %d", owner.Kind())
		}

		switch out := rec.Output.(type) {
		case *block.AliasOutput:
			c.aliases[out.ResolvedID(rec.OutputID())] = pos
		case *block.NftOutput:
			c.nfts[out.ResolvedID(rec.OutputID())] = pos
		}
	}
	return nil
}

func (c *unlockChecker) checkKey(pos uint16, owner *block.KeyAddress, u block.Unlock) error {
	i := int(pos)
	switch u := u.(type) {
	case *block.SignatureUnlock:
		if u == nil || u.Signature == nil {
			return mismatch(i, "signature unlock without signature")
		}
		if !block.SameAddress(u.Signature.SignerAddress(), owner) {
			return mismatch(i, "signed by a key other than the owner %s", owner.PubKeyHash)
		}
		if err := u.Signature.Verify(c.msg[:]); err != nil {
			return mismatch(i, "%v", err)
		}
		if prev, dup := c.sigs[owner.PubKeyHash]; dup {
			return mismatch(i, "owner already signed at %d, expected a reference unlock", prev)
		}
		c.sigs[owner.PubKeyHash] = pos
	case *block.ReferenceUnlock:
		if u == nil {
			return mismatch(i, "reference unlock is nil")
		}
		if signer, found := c.sigs[owner.PubKeyHash]; !found || signer != u.Reference {
			return mismatch(i, "reference to %d is not a signature of owner %s", u.Reference, owner.PubKeyHash)
		}
	default:
		return mismatch(i, "owner is a key, got unlock kind %d", u.Kind())
	}
	return nil
}

func mismatch(i int, format string, args ...any) error {
	return fmt.Errorf("%w: unlock %d: %s", ErrUnlockMismatch, i, fmt.Sprintf(format, args...))
}
