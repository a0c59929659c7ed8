package identitymap

type absentRow struct{}

var absent = &absentRow{}

type isolationStrategy interface {
	add(key any, value any)
	addAbsent(key any)
	get(key any) (any, error)
	has(key any) bool
}

type disabledStrategy struct{}

func (disabledStrategy) add(any, any)  {}
func (disabledStrategy) addAbsent(any) {}
func (disabledStrategy) has(any) bool  { return false }
func (disabledStrategy) get(any) (any, error) {
	return nil, ErrKeyNotFound
}

type repeatableReadsStrategy struct {
	cache *lruCache
}

func (s repeatableReadsStrategy) add(key any, value any) {
	s.cache.add(key, value)
}

func (s repeatableReadsStrategy) addAbsent(any) {}

func (s repeatableReadsStrategy) get(key any) (any, error) {
	value, ok := s.cache.get(key)
	if !ok || value == absent {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

func (s repeatableReadsStrategy) has(key any) bool {
	value, ok := s.cache.get(key)
	return ok && value != absent
}

type serializableStrategy struct {
	cache *lruCache
}

func (s serializableStrategy) add(key any, value any) {
	s.cache.add(key, value)
}

func (s serializableStrategy) addAbsent(key any) {
	s.cache.add(key, absent)
}

func (s serializableStrategy) get(key any) (any, error) {
	value, ok := s.cache.get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	if value == absent {
		return nil, ErrObjectNotFound
	}
	return value, nil
}

func (s serializableStrategy) has(key any) bool {
	_, ok := s.cache.get(key)
	return ok
}
