package application

import (
	"net"
	"strings"

	"raffler/domain/entities"
)

// ManagerPolicy decides who may run administrative operations
type ManagerPolicy interface {
	IsManager(callerIP string) bool
}

// ListInvalidator drops cached raffle listings after a change that would
// alter them
type ListInvalidator interface {
	InvalidateRaffleList()
}

// Metrics records business outcomes of controller operations
type Metrics interface {
	RecordRaffleCreated(totalTickets int64)
	RecordTicketClaimed()
	RecordDraw(winnerCount int)
	RecordVerification(hasWon bool)
	RecordRejection(operation string, code entities.ErrorCode)
	MeasureOperation(operation string) func()
}

// IPAllowList grants manager rights to a fixed set of IP addresses
type IPAllowList struct {
	ips map[string]struct{}
}

// NewIPAllowList builds an allow-list; unparseable entries are ignored
func NewIPAllowList(ips []string) *IPAllowList {
	list := &IPAllowList{ips: make(map[string]struct{}, len(ips))}
	for _, raw := range ips {
		if ip := normalizeIP(raw); ip != "" {
			list.ips[ip] = struct{}{}
		}
	}
	return list
}

// IsManager reports whether callerIP is on the list
func (l *IPAllowList) IsManager(callerIP string) bool {
	ip := normalizeIP(callerIP)
	if ip == "" {
		return false
	}
	_, ok := l.ips[ip]
	return ok
}

// Len returns the number of allowed addresses
func (l *IPAllowList) Len() int {
	return len(l.ips)
}

// normalizeIP returns the canonical text form so that e.g. an IPv4-mapped
// IPv6 address matches its IPv4 entry
func normalizeIP(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	return ip.String()
}

type noopMetrics struct{}

func (noopMetrics) RecordRaffleCreated(int64)                  {}
func (noopMetrics) RecordTicketClaimed()                       {}
func (noopMetrics) RecordDraw(int)                             {}
func (noopMetrics) RecordVerification(bool)                    {}
func (noopMetrics) RecordRejection(string, entities.ErrorCode) {}
func (noopMetrics) MeasureOperation(string) func()             { return func() {} }

type noopInvalidator struct{}

func (noopInvalidator) InvalidateRaffleList() {}
