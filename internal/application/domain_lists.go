package application

import (
	"sort"
	"sync"
)

// List names a custom domain list
type List string

const (
	Blacklist List = "blacklist"
	Whitelist List = "whitelist"
)

// DomainLists holds the mutable blacklist and whitelist sets
type DomainLists struct {
	mu        sync.RWMutex
	blacklist map[string]struct{}
	whitelist map[string]struct{}
}

// NewDomainLists creates empty lists
func NewDomainLists() *DomainLists {
	return &DomainLists{
		blacklist: make(map[string]struct{}),
		whitelist: make(map[string]struct{}),
	}
}

func (l *DomainLists) set(list List) map[string]struct{} {
	if list == Blacklist {
		return l.blacklist
	}
	return l.whitelist
}

// Contains reports list membership
func (l *DomainLists) Contains(list List, domainName string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.set(list)[domainName]
	return ok
}

// Add inserts domains and returns how many were not already present
func (l *DomainLists) Add(list List, domains ...string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return addAll(l.set(list), domains)
}

// Move adds the domain to list and removes it from the other one.
// Returns false if it was already only on list.
func (l *DomainLists) Move(list List, domainName string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	other := Whitelist
	if list == Whitelist {
		other = Blacklist
	}
	_, onOther := l.set(other)[domainName]
	delete(l.set(other), domainName)
	return addAll(l.set(list), []string{domainName}) > 0 || onOther
}

// Remove deletes the domain from list and reports whether it was present
func (l *DomainLists) Remove(list List, domainName string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := l.set(list)
	if _, ok := set[domainName]; !ok {
		return false
	}
	delete(set, domainName)
	return true
}

// Merge adds a whole intelligence batch under one lock, so readers see either
// none or all of it
func (l *DomainLists) Merge(phishing, legitimate []string) (phishingAdded, legitimateAdded int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return addAll(l.blacklist, phishing), addAll(l.whitelist, legitimate)
}

// Sizes returns the number of domains on each list
func (l *DomainLists) Sizes() (blacklist, whitelist int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blacklist), len(l.whitelist)
}

// Snapshot returns both lists, sorted
func (l *DomainLists) Snapshot() (blacklist, whitelist []string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.blacklist), sortedKeys(l.whitelist)
}

func addAll(set map[string]struct{}, domains []string) int {
	added := 0
	for _, d := range domains {
		if _, ok := set[d]; ok {
			continue
		}
		set[d] = struct{}{}
		added++
	}
	return added
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
