package ratelimit

import (
	"container/heap"
	"time"
)

// rollingLimit tracks reservations that count against a capacity until
// they fall out of the window.
type rollingLimit struct {
	cap  uint64
	used uint64
	heap reservationHeap
	byID map[string]*reservation
}

type reservation struct {
	id        string
	amount    uint64
	expiresAt time.Time
	heapIndex int
}

type reservationHeap []*reservation

func (h reservationHeap) Len() int { return len(h) }

func (h reservationHeap) Less(i, j int) bool {
	return h[i].expiresAt.Before(h[j].expiresAt)
}

func (h reservationHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *reservationHeap) Push(x any) {
	res := x.(*reservation)
	res.heapIndex = len(*h)
	*h = append(*h, res)
}

func (h *reservationHeap) Pop() any {
	old := *h
	n := len(old)
	res := old[n-1]
	res.heapIndex = -1
	*h = old[:n-1]
	return res
}

func newRollingLimit(capacity uint64) *rollingLimit {
	return &rollingLimit{
		cap:  capacity,
		byID: map[string]*reservation{},
	}
}

// expire drops every reservation whose window ended at or before now.
func (l *rollingLimit) expire(now time.Time) {
	for l.heap.Len() > 0 {
		res := l.heap[0]
		if res.expiresAt.After(now) {
			break
		}
		heap.Pop(&l.heap)
		delete(l.byID, res.id)
		if l.used >= res.amount {
			l.used -= res.amount
		} else {
			l.used = 0
		}
	}
}

func (l *rollingLimit) fits(amount uint64) bool {
	return l.used+amount <= l.cap
}

// nextExpiry is the earliest instant at which capacity frees up. ok is
// false when nothing is reserved.
func (l *rollingLimit) nextExpiry() (time.Time, bool) {
	if l.heap.Len() == 0 {
		return time.Time{}, false
	}
	return l.heap[0].expiresAt, true
}

func (l *rollingLimit) add(leaseID string, amount uint64, expiresAt time.Time) {
	res := &reservation{id: leaseID, amount: amount, expiresAt: expiresAt}
	l.byID[leaseID] = res
	l.used += amount
	heap.Push(&l.heap, res)
}

// reduce lowers a reservation to newAmount. Increases are ignored so a
// reconciled lease never blocks callers that were already admitted.
func (l *rollingLimit) reduce(leaseID string, newAmount uint64) {
	res, ok := l.byID[leaseID]
	if !ok || newAmount >= res.amount {
		return
	}
	diff := res.amount - newAmount
	if l.used >= diff {
		l.used -= diff
	} else {
		l.used = 0
	}
	res.amount = newAmount
}
