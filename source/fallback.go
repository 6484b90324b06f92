package source

import (
	"context"
	"log/slog"
)

// Fallback serves Primary and switches to Secondary when Primary fails,
// returns an unexpected schema or no matching rows. Failures are logged and
// reflected in the result origin, never returned.
type Fallback struct {
	Primary   Source
	Secondary Source
}

// Fetch returns the prepared table and the variant that produced it. A nil
// Primary always serves Secondary.
func (f *Fallback) Fetch(ctx context.Context, req Request) Result {
	if f.Primary != nil {
		w, err := f.Primary.Fetch(ctx, req)
		if err == nil {
			w, err = Prepare(w, req)
		}
		if err == nil {
			slog.Info("fetched dataset", "dataset", req.Dataset, "rows", w.Len())
			return Result{Table: w, Origin: OriginLive}
		}
		slog.Warn("unable to fetch dataset, falling back to synthetic data", "dataset", req.Dataset, "error", err.Error())
	}

	if f.Secondary == nil {
		return Result{Origin: OriginUnavailable}
	}
	w, err := f.Secondary.Fetch(ctx, req)
	if err == nil {
		w, err = Prepare(w, req)
	}
	if err != nil {
		slog.Error("unable to produce synthetic dataset", "dataset", req.Dataset, "error", err.Error())
		return Result{Origin: OriginUnavailable}
	}
	return Result{Table: w, Origin: OriginSynthetic}
}
