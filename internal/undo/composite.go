package undo

import "context"

// Composite groups child commands that must apply and reverse
// atomically with each other, e.g. an equipment swap carrying the
// follow-on mash-tun field updates the user opted into.
type Composite struct {
	desc     string
	children []Command
}

func NewComposite(desc string, children ...Command) *Composite {
	return &Composite{desc: desc, children: children}
}

// Add appends a child command. Children execute in insertion order and
// reverse in the opposite order.
func (c *Composite) Add(cmd Command) {
	c.children = append(c.children, cmd)
}

// Empty reports whether the composite carries no children.
func (c *Composite) Empty() bool {
	return len(c.children) == 0
}

func (c *Composite) Redo(ctx context.Context) error {
	for _, child := range c.children {
		if err := child.Redo(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Composite) Undo(ctx context.Context) error {
	for i := len(c.children) - 1; i >= 0; i-- {
		if err := c.children[i].Undo(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Composite) Description() string {
	return c.desc
}
