package identitymap

// IdentityKey ties a key type to the type of the value it caches, so that
// rows of different entities with equal ids never collide. Embed
// IdentityKeyBase[V] into key structs to implement it.
type IdentityKey[V any] interface {
	IsIdentityKey(*V)
}

type IdentityKeyBase[V any] struct{}

func (IdentityKeyBase[V]) IsIdentityKey(*V) {}
