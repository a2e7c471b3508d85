package app

import "context"

// requireOwner loads the resource identified by id and returns it only when
// ownerOf reports requesterID. A missing resource and one owned by someone
// else both yield ErrNotFound so that non-owners learn nothing about it.
func requireOwner[T any](
	ctx context.Context,
	load func(context.Context, int64) (*T, error),
	ownerOf func(*T) int64,
	id, requesterID int64,
) (*T, error) {
	res, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil || ownerOf(res) != requesterID {
		return nil, ErrNotFound
	}
	return res, nil
}
