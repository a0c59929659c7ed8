package signals

// CompositeSignalImp fans Attach, Detach and Notify out to its delegates.
type CompositeSignalImp[E any] struct {
	delegates []Signal[E]
}

func NewCompositeSignal[E any](delegates ...Signal[E]) *CompositeSignalImp[E] {
	return &CompositeSignalImp[E]{delegates: delegates}
}

func (s *CompositeSignalImp[E]) Attach(observer Observer[E], observerID ...any) Detach {
	detaches := make([]Detach, 0, len(s.delegates))
	for _, delegate := range s.delegates {
		detaches = append(detaches, delegate.Attach(observer, observerID...))
	}
	return func() {
		for _, detach := range detaches {
			detach()
		}
	}
}

func (s *CompositeSignalImp[E]) Detach(observer Observer[E], observerID ...any) {
	for _, delegate := range s.delegates {
		delegate.Detach(observer, observerID...)
	}
}

func (s *CompositeSignalImp[E]) Notify(event E) {
	for _, delegate := range s.delegates {
		delegate.Notify(event)
	}
}
