package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ufukcicekdev/syncx/internal/formatter"
	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/tasks"
)

var (
	_ list.Item = accountItem{}
	_ list.Item = platformItem{}
)

// accountItem wraps [models.ConnectedAccount] to implement [list.Item].
type accountItem struct {
	platform models.Platform
	account  models.ConnectedAccount
}

func (i accountItem) FilterValue() string { return i.platform.DisplayName() + " " + i.account.Handle() }
func (i accountItem) Title() string {
	return fmt.Sprintf("%s  %s", styles.badge(i.platform), i.account.Handle())
}
func (i accountItem) Description() string {
	status := styles.ok.Render("● connected")
	if !i.account.Active() {
		status = styles.warn.Render(fmt.Sprintf("● %s", accountStatus(i.account)))
	}
	return fmt.Sprintf("%s • connected %s", status, formatter.Relative(i.account.ConnectedAt))
}

// platformItem is a platform with no linked account.
type platformItem struct {
	platform    models.Platform
	unavailable bool
}

func (i platformItem) FilterValue() string { return i.platform.DisplayName() }
func (i platformItem) Title() string       { return styles.badge(i.platform) }
func (i platformItem) Description() string {
	if i.unavailable {
		return "Not available yet"
	}
	return "Not connected • press c to connect"
}

func accountStatus(a models.ConnectedAccount) string {
	if a.IsExpired && a.Status == models.StatusConnected {
		return "expired"
	}
	return string(a.Status)
}

// dashboardItems lists every platform in display order, expanding connected ones into their accounts.
func dashboardItems(d *tasks.Dashboard) []list.Item {
	inactive := map[string]bool{}
	for _, sp := range d.Platforms {
		if !sp.IsActive {
			inactive[sp.Name] = true
		}
	}

	var items []list.Item
	for _, p := range models.Platforms() {
		accounts := d.AccountsFor(p)
		if len(accounts) == 0 {
			items = append(items, platformItem{platform: p, unavailable: inactive[p.String()]})
			continue
		}
		for _, a := range accounts {
			items = append(items, accountItem{platform: p, account: a})
		}
	}
	return items
}
