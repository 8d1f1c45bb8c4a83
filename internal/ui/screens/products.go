// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
	"github.com/jeranaias/shopdesk-tui/internal/ui/components"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// PRODUCT LIST
// =============================================================================

type productsMsg struct {
	products   []model.Product
	categories []model.Category
}

// ProductList is a table of products with an optional category filter.
type ProductList struct {
	deps       Deps
	user       model.User
	products   []model.Product
	categories []model.Category
	filter     int // index into categories, -1 for all
	cursor     int
	offset     int
	loaded     bool
	width      int
	height     int
}

func newProductList(d Deps, u model.User) *ProductList {
	return &ProductList{deps: d, user: u, filter: -1}
}

func (s *ProductList) Init() tea.Cmd { return s.load() }

func (s *ProductList) load() tea.Cmd {
	d := s.deps
	var categoryID int64
	if s.filter >= 0 && s.filter < len(s.categories) {
		categoryID = s.categories[s.filter].ID
	}
	return func() tea.Msg {
		ctx := d.ctx()
		cats, err := d.API.ListCategories(ctx)
		if err != nil {
			return failed("list categories", err)
		}
		products, err := d.API.ListProducts(ctx, categoryID)
		if err != nil {
			return failed("list products", err)
		}
		return productsMsg{products: products, categories: cats}
	}
}

func (s *ProductList) SetSize(width, height int) { s.width, s.height = width, height }

func (s *ProductList) Bindings() []key.Binding {
	return []key.Binding{keyUp, keyDown, keyOpen, keyAdd, keyFilter, keyRefresh, keyBack}
}

// Selected returns the highlighted product.
func (s *ProductList) Selected() (model.Product, bool) {
	if s.cursor < 0 || s.cursor >= len(s.products) {
		return model.Product{}, false
	}
	return s.products[s.cursor], true
}

func (s *ProductList) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case productsMsg:
		s.loaded = true
		s.products = msg.products
		s.categories = msg.categories
		if s.filter >= len(s.categories) {
			s.filter = -1
		}
		if s.cursor >= len(s.products) {
			s.cursor = max(0, len(s.products)-1)
		}
		s.scroll()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyUp):
			if s.cursor > 0 {
				s.cursor--
				s.scroll()
			}
		case key.Matches(msg, keyDown):
			if s.cursor < len(s.products)-1 {
				s.cursor++
				s.scroll()
			}
		case key.Matches(msg, keyOpen):
			if p, ok := s.Selected(); ok {
				s.deps.navigate(navigation.ProductDetail{User: s.user, Product: p})
			}
		case key.Matches(msg, keyAdd):
			s.deps.navigate(navigation.ProductAdd{User: s.user})
		case key.Matches(msg, keyFilter):
			s.filter++
			if s.filter >= len(s.categories) {
				s.filter = -1
			}
			s.cursor, s.offset = 0, 0
			return s, s.load()
		case key.Matches(msg, keyRefresh):
			return s, s.load()
		case key.Matches(msg, keyBack):
			s.deps.navigate(navigation.Dashboard{User: s.user})
		}
	}
	return s, nil
}

func (s *ProductList) visibleRows() int {
	if s.height <= 4 {
		return 10
	}
	return s.height - 4
}

func (s *ProductList) scroll() {
	rows := s.visibleRows()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+rows {
		s.offset = s.cursor - rows + 1
	}
}

func (s *ProductList) categoryName(id int64) string {
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "-"
}

func (s *ProductList) View() string {
	t := s.deps.Theme
	var b strings.Builder
	title := "Products"
	if s.filter >= 0 && s.filter < len(s.categories) {
		title += " · " + s.categories[s.filter].Name
	}
	b.WriteString(t.Title.Render(title))
	b.WriteString("\n")

	if !s.loaded {
		b.WriteString(t.Muted.Render("Loading..."))
		return b.String()
	}
	if len(s.products) == 0 {
		b.WriteString(t.Muted.Render("No products. Press a to add one."))
		return b.String()
	}

	b.WriteString(t.TableHeader.Render(productRow("SKU", "Name", "Category", "Price", "Stock")))
	b.WriteString("\n")
	end := min(len(s.products), s.offset+s.visibleRows())
	for i := s.offset; i < end; i++ {
		p := s.products[i]
		row := productRow(p.SKU, p.Name, s.categoryName(p.CategoryID), p.Price(), "")
		stock := t.Stock(p.Stock, model.LowStockThreshold).Render(util.IntToString(p.Stock))
		style := t.TableRow
		if i == s.cursor {
			style = t.TableRowSel
		}
		b.WriteString(style.Render(row) + " " + stock)
		b.WriteString("\n")
	}
	b.WriteString(t.Muted.Render(fmt.Sprintf("%d of %d", s.cursor+1, len(s.products))))
	return b.String()
}

func productRow(sku, name, category, price, stock string) string {
	return util.PadRight(util.TruncateWidth(sku, 14), 14) + " " +
		util.PadRight(util.TruncateWidth(name, 28), 28) + " " +
		util.PadRight(util.TruncateWidth(category, 14), 14) + " " +
		util.PadRight(price, 12) + stock
}

// =============================================================================
// PRODUCT DETAIL
// =============================================================================

type productMsg struct{ product model.Product }

type productDeletedMsg struct{}

// ProductDetail shows one product with its rendered description.
type ProductDetail struct {
	deps     Deps
	user     model.User
	product  model.Product
	viewport viewport.Model
	confirm  bool
	width    int
	height   int
}

func newProductDetail(d Deps, u model.User, p model.Product) *ProductDetail {
	s := &ProductDetail{deps: d, user: u, product: p, viewport: viewport.New(80, 10)}
	s.render()
	return s
}

// Init refreshes the product so edits made elsewhere show up.
func (s *ProductDetail) Init() tea.Cmd {
	d, id := s.deps, s.product.ID
	if id == 0 {
		return nil
	}
	return func() tea.Msg {
		p, err := d.API.GetProduct(d.ctx(), id)
		if err != nil {
			return failed("load product", err)
		}
		return productMsg{product: p}
	}
}

func (s *ProductDetail) SetSize(width, height int) {
	s.width, s.height = width, height
	s.viewport.Width = max(20, width-4)
	s.viewport.Height = max(3, height-10)
	s.render()
}

func (s *ProductDetail) render() {
	width := s.viewport.Width
	var body string
	if s.deps.Markdown != nil {
		body = s.deps.Markdown.Render(s.product.Description, width)
	} else {
		body = s.product.Description
	}
	s.viewport.SetContent(body)
}

func (s *ProductDetail) Bindings() []key.Binding {
	return []key.Binding{keyEdit, keyCopy, keyDelete, keyBack}
}

func (s *ProductDetail) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case productMsg:
		s.product = msg.product
		s.render()
		return s, nil
	case productDeletedMsg:
		s.deps.navigate(navigation.ProductList{User: s.user})
		return s, toast(components.ToastKindSuccess, "Deleted "+s.product.SKU)
	case tea.KeyMsg:
		if s.confirm {
			s.confirm = false
			if msg.String() == "y" {
				return s, s.delete()
			}
			return s, nil
		}
		switch {
		case key.Matches(msg, keyEdit):
			s.deps.navigate(navigation.ProductEdit{User: s.user, Product: s.product})
			return s, nil
		case key.Matches(msg, keyCopy):
			return s, s.copySKU()
		case key.Matches(msg, keyDelete):
			s.confirm = true
			return s, nil
		case key.Matches(msg, keyBack):
			s.deps.navigate(navigation.ProductList{User: s.user})
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *ProductDetail) copySKU() tea.Cmd {
	if s.deps.Clipboard == nil {
		return toast(components.ToastKindWarning, "Clipboard unavailable")
	}
	if err := s.deps.Clipboard(s.product.SKU); err != nil {
		return toast(components.ToastKindWarning, "Copy failed: "+err.Error())
	}
	return toast(components.ToastKindStatus, "Copied "+s.product.SKU)
}

func (s *ProductDetail) delete() tea.Cmd {
	d, id := s.deps, s.product.ID
	return func() tea.Msg {
		if err := d.API.DeleteProduct(d.ctx(), id); err != nil {
			return failed("delete product", err)
		}
		return productDeletedMsg{}
	}
}

func (s *ProductDetail) View() string {
	t := s.deps.Theme
	p := s.product
	var b strings.Builder
	b.WriteString(t.Title.Render(p.Name))
	b.WriteString("\n")
	b.WriteString(t.Label.Render("SKU   ") + t.Value.Render(p.SKU) + "\n")
	b.WriteString(t.Label.Render("Price ") + t.Value.Render(p.Price()) + "\n")
	b.WriteString(t.Label.Render("Stock ") +
		t.Stock(p.Stock, model.LowStockThreshold).Render(util.IntToString(p.Stock)) + "\n")
	if !p.UpdatedAt.IsZero() {
		b.WriteString(t.Muted.Render("Updated "+p.UpdatedAt.Local().Format("2006-01-02 15:04")) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(s.viewport.View())
	if s.confirm {
		b.WriteString("\n" + t.ErrorText.Render("Delete "+p.SKU+"? (y/N)"))
	}
	return b.String()
}
