package usecase

import (
	"slices"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
)

const MsgListFailed = "Failed to load rows. Showing the last loaded page."

// paging is forward/back paging without a known total. It is not
// synchronized; owners guard it with their own mutex.
type paging struct {
	days int
	page int
}

func (p *paging) setDays(days int) error {
	if !slices.Contains(domain.DayRanges, days) {
		return errors.Wrapf(ErrInvalidDays, "days %d", days)
	}
	p.days = days
	p.page = 1
	return nil
}

func (p *paging) setPage(page int) error {
	if page < 1 {
		return errors.Wrapf(ErrInvalidPage, "page %d", page)
	}
	p.page = page
	return nil
}

func (p *paging) next() {
	p.page++
}

// prev reports whether the page changed. It is a no-op on the first page.
func (p *paging) prev() bool {
	if p.page <= 1 {
		p.page = 1
		return false
	}
	p.page--
	return true
}
