package checkout

import "sync"

// CartItem adalah satu baris item di keranjang, di-keyed berdasarkan Name
type CartItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"` // harga satuan
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
	Image    string `json:"image"`
}

// Cart menampung item belanja selama sesi berlangsung.
// Setiap mutasi membangun slice baru sehingga hasil Items() tidak pernah
// berubah di belakang pemanggil.
type Cart struct {
	mu    sync.RWMutex
	items []CartItem
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem menambahkan item baru dengan quantity 1, atau jika nama sudah ada,
// menaikkan quantity-nya 1. Note/image dari pemanggilan berikutnya diabaikan
// saat merge (entri pertama yang menang).
func (c *Cart) AddItem(item CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]CartItem, len(c.items))
	copy(next, c.items)

	for i := range next {
		if next[i].Name == item.Name {
			next[i].Quantity++
			c.items = next
			return
		}
	}

	item.Quantity = 1
	c.items = append(next, item)
}

// IncrementItem menaikkan quantity item 1. Nama yang tidak dikenal diabaikan.
func (c *Cart) IncrementItem(name string) {
	c.adjust(name, 1)
}

// DecrementItem menurunkan quantity item 1; quantity yang mencapai 0
// menghapus item dari keranjang.
func (c *Cart) DecrementItem(name string) {
	c.adjust(name, -1)
}

func (c *Cart) adjust(name string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]CartItem, 0, len(c.items))
	for _, it := range c.items {
		if it.Name == name {
			it.Quantity += delta
			if it.Quantity < 1 {
				continue
			}
		}
		next = append(next, it)
	}
	c.items = next
}

// RemoveItem menghapus item tanpa syarat
func (c *Cart) RemoveItem(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]CartItem, 0, len(c.items))
	for _, it := range c.items {
		if it.Name == name {
			continue
		}
		next = append(next, it)
	}
	c.items = next
}

// Clear mengosongkan keranjang (dipanggil setelah order berhasil dibuat)
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Replace mengganti seluruh isi keranjang, dipakai saat restore draft
func (c *Cart) Replace(items []CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		next = append(next, it)
	}
	c.items = next
}

// Items mengembalikan salinan isi keranjang
func (c *Cart) Items() []CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// ItemCount adalah jumlah seluruh quantity
func (c *Cart) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int
	for _, it := range c.items {
		count += it.Quantity
	}
	return count
}

// Subtotal adalah jumlah price x quantity seluruh item
func (c *Cart) Subtotal() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total int64
	for _, it := range c.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
