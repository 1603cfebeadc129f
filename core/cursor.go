package core

// Cursor represents the current position for editing operations
type Cursor struct {
	Position  Position // Current position (row, column)
	Preferred int      // Preferred column for vertical movement (sticky column)
}

// clampCol ensures the column stays within the valid range for the given line
func (c *Cursor) clampCol(buffer Buffer) {
	lineLen := buffer.LineRuneCount(c.Position.Row)
	if c.Position.Col > lineLen {
		c.Position.Col = lineLen
	}
	if c.Position.Col < 0 {
		c.Position.Col = 0
	}
}

// MoveLeft moves the cursor left by count characters within the line.
func (c *Cursor) MoveLeft(buffer Buffer, count int) error {
	for range count {
		if c.Position.Col <= 0 {
			return ErrStartOfLine
		}
		c.Position.Col--
	}
	c.clampCol(buffer)
	c.Preferred = c.Position.Col

	return nil
}

// MoveRight moves the cursor right by count characters within the line.
func (c *Cursor) MoveRight(buffer Buffer, count int) error {
	lineLen := buffer.LineRuneCount(c.Position.Row)
	for range count {
		// Allow moving *to* the position *after* the last logical char
		if c.Position.Col >= lineLen {
			return ErrEndOfLine
		}
		c.Position.Col++
	}
	c.clampCol(buffer)
	c.Preferred = c.Position.Col

	return nil
}

// MoveUp moves the cursor up by count lines, keeping the preferred column when possible.
func (c *Cursor) MoveUp(buffer Buffer, count int) error {
	if c.Position.Row <= 0 {
		return ErrStartOfBuffer
	}
	c.Position.Row = max(c.Position.Row-count, 0)
	c.Position.Col = c.Preferred
	c.clampCol(buffer)

	return nil
}

// MoveDown moves the cursor down by count lines, keeping the preferred column when possible.
func (c *Cursor) MoveDown(buffer Buffer, count int) error {
	last := buffer.LineCount() - 1
	if c.Position.Row >= last {
		return ErrEndOfBuffer
	}
	c.Position.Row = min(c.Position.Row+count, last)
	c.Position.Col = c.Preferred
	c.clampCol(buffer)

	return nil
}

// MoveLeftOrUp moves one character left, wrapping to the end of the previous line.
func (c *Cursor) MoveLeftOrUp(buffer Buffer) error {
	if c.Position.Col > 0 {
		return c.MoveLeft(buffer, 1)
	}
	if c.Position.Row == 0 {
		return ErrStartOfBuffer
	}
	c.Position.Row--
	c.MoveToLineEnd(buffer)

	return nil
}

// MoveRightOrDown moves one character right, wrapping to the start of the next line.
func (c *Cursor) MoveRightOrDown(buffer Buffer) error {
	if c.Position.Col < buffer.LineRuneCount(c.Position.Row) {
		return c.MoveRight(buffer, 1)
	}
	if c.Position.Row >= buffer.LineCount()-1 {
		return ErrEndOfBuffer
	}
	c.Position.Row++
	c.MoveToLineStart()

	return nil
}

func (c *Cursor) MoveToLineStart() {
	c.Position.Col = 0
	c.Preferred = 0
}

func (c *Cursor) MoveToLineEnd(buffer Buffer) {
	c.Position.Col = buffer.LineRuneCount(c.Position.Row)
	c.Preferred = c.Position.Col
}
