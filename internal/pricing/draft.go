package pricing

// Draft is a receipt under construction. It is a value: every With/Without
// method returns a new Draft and leaves the receiver untouched.
type Draft struct {
	lines    []Line
	payments []Payment
}

// NewDraft returns an empty draft.
func NewDraft() Draft {
	return Draft{}
}

// Lines returns a copy of the draft's lines.
func (d Draft) Lines() []Line {
	return append([]Line(nil), d.lines...)
}

// Payments returns a copy of the draft's payments.
func (d Draft) Payments() []Payment {
	return append([]Payment(nil), d.payments...)
}

// WithLine appends a normalized line.
func (d Draft) WithLine(in LineInput) Draft {
	next := d.clone()
	next.lines = append(next.lines, in.Normalize())
	return next
}

// WithoutLine drops the line at index i; out-of-range indexes are ignored.
func (d Draft) WithoutLine(i int) Draft {
	next := d.clone()
	if i >= 0 && i < len(next.lines) {
		next.lines = append(next.lines[:i], next.lines[i+1:]...)
	}
	return next
}

// WithPayment appends a payment. Without an explicit amount the payment
// is pre-filled with what is still owed at this moment. Explicit amounts are
// kept as given; Reconcile rounds only the sum.
func (d Draft) WithPayment(in PaymentInput) Draft {
	amount := d.Reconcile().Remaining
	if in.Amount != nil {
		amount = *in.Amount
	}
	next := d.clone()
	next.payments = append(next.payments, Payment{Method: in.Method, Amount: amount})
	return next
}

// WithoutPayment drops the payment at index i; out-of-range indexes are ignored.
func (d Draft) WithoutPayment(i int) Draft {
	next := d.clone()
	if i >= 0 && i < len(next.payments) {
		next.payments = append(next.payments[:i], next.payments[i+1:]...)
	}
	return next
}

// Reconcile reconciles the draft's lines against its payments.
func (d Draft) Reconcile() Reconciliation {
	return Reconcile(d.lines, d.payments)
}

func (d Draft) clone() Draft {
	return Draft{lines: d.Lines(), payments: d.Payments()}
}
