package nav

import (
	"reflect"
	"slices"
)

// Transition is published to subscribers after every committed navigation.
type Transition struct {
	ToState   State
	FromState State
	History   []HistoryRecord
	Pointer   int
}

// Subscriber observes committed transitions.
type Subscriber interface {
	OnTransition(Transition)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Transition)

// OnTransition implements Subscriber.
func (f SubscriberFunc) OnTransition(t Transition) {
	if f != nil {
		f(t)
	}
}

type subscription struct {
	id  int
	sub Subscriber
}

// Subscribe registers sub. Registering the same comparable subscriber twice
// fails with ErrAlreadySubscribed; function subscribers are never considered
// equal. A started navigator delivers the current transition right away.
func (n *Navigator) Subscribe(sub Subscriber) (unsubscribe func(), err error) {
	if sub == nil {
		return func() {}, nil
	}
	if n.subscribed(sub) {
		return func() {}, n.fail("subscribe", "", ErrAlreadySubscribed)
	}
	n.nextSubID++
	id := n.nextSubID
	n.subscribers = append(n.subscribers, subscription{id: id, sub: sub})
	if n.started {
		sub.OnTransition(n.transition())
	}
	return func() { n.removeSubscription(id) }, nil
}

// SubscribeFunc registers fn as a subscriber.
func (n *Navigator) SubscribeFunc(fn func(Transition)) (unsubscribe func()) {
	unsubscribe, _ = n.Subscribe(SubscriberFunc(fn))
	return unsubscribe
}

// Unsubscribe removes a comparable subscriber. It reports whether sub was
// registered.
func (n *Navigator) Unsubscribe(sub Subscriber) bool {
	for _, s := range n.subscribers {
		if sameSubscriber(s.sub, sub) {
			n.removeSubscription(s.id)
			return true
		}
	}
	return false
}

// RemoveAllSubscribers drops every subscriber.
func (n *Navigator) RemoveAllSubscribers() {
	n.subscribers = nil
}

func (n *Navigator) subscribed(sub Subscriber) bool {
	return slices.ContainsFunc(n.subscribers, func(s subscription) bool {
		return sameSubscriber(s.sub, sub)
	})
}

func (n *Navigator) removeSubscription(id int) {
	n.subscribers = slices.DeleteFunc(n.subscribers, func(s subscription) bool {
		return s.id == id
	})
}

func sameSubscriber(a, b Subscriber) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func (n *Navigator) transition() Transition {
	return Transition{
		ToState:   n.state.Clone(),
		FromState: n.prev.Clone(),
		History:   n.stack.list(),
		Pointer:   n.stack.pointer,
	}
}

// broadcast publishes the current transition. Subscribers added or removed
// during delivery take effect on the next broadcast.
func (n *Navigator) broadcast() {
	if len(n.subscribers) == 0 {
		return
	}
	subscribers := slices.Clone(n.subscribers)
	for _, s := range subscribers {
		s.sub.OnTransition(n.transition())
	}
}
