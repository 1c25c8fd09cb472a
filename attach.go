package directobj

// Attachment pairs a record with the block holding its serialized form, so
// the record can be saved and reloaded through one handle.
//
// The block is owned by whoever holds the attachment: attaching a block that
// another attachment still references must be avoided, and Detach hands the
// block back to the caller.
type Attachment struct {
	heap   *Heap
	block  *Block
	cursor Cursor
}

// NewAttachment returns an attachment allocating from h, with no block.
func NewAttachment(h *Heap) *Attachment {
	if h == nil {
		h = DefaultHeap()
	}
	return &Attachment{heap: h}
}

// Attach binds b. A previously attached block is not freed; it is returned
// so the caller can release it.
func (a *Attachment) Attach(b *Block) *Block {
	prev := a.block
	a.block = b
	return prev
}

// Detach unbinds the block and returns it. The caller owns it afterwards.
func (a *Attachment) Detach() *Block {
	b := a.block
	a.block = nil
	return b
}

// Block returns the attached block, or nil.
func (a *Attachment) Block() *Block { return a.block }

// Attached reports whether a live block is attached.
func (a *Attachment) Attached() bool { return a.block.live() }

// Save serializes r. Without an attached block a new one is allocated and
// attached; otherwise the attached block is updated in place and resized if
// needed.
func (a *Attachment) Save(r Record) error {
	if !a.block.live() {
		b, err := a.heap.FromRecord(r, &a.cursor)
		if err != nil {
			return err
		}
		a.block = b
		return nil
	}
	return a.block.Update(r, &a.cursor)
}

// Load fills r from the attached block. It returns ErrDetached if no block
// is attached.
func (a *Attachment) Load(r Record) error {
	if a.block == nil {
		return ErrDetached
	}
	return a.block.Populate(r, &a.cursor)
}

// Free releases the attached block and detaches it.
func (a *Attachment) Free() {
	a.Detach().Free()
}
