package docstore

import (
	"context"

	"cloud.google.com/go/firestore"
	crerr "github.com/cockroachdb/errors"
	"google.golang.org/api/iterator"
)

// firestoreStore implements Store on top of Cloud Firestore.
type firestoreStore struct {
	client *firestore.Client
}

// NewFirestore connects to the given project. databaseID may be empty for
// the default database.
func NewFirestore(ctx context.Context, projectID, databaseID string) (Store, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, crerr.Wrap(err, "create firestore client")
	}
	return &firestoreStore{client: client}, nil
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string, out any) error {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return crerr.Mark(crerr.Newf("%s/%s", collection, id), ErrNotFound)
	}
	if err != nil {
		return crerr.Wrapf(err, "get %s/%s", collection, id)
	}
	return snap.DataTo(out)
}

func (s *firestoreStore) GetAll(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Path, f.Op, f.Value)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, crerr.Wrapf(err, "iterate %s", collection)
		}
		docs = append(docs, &firestoreDoc{snap: snap})
	}
	return docs, nil
}

func (s *firestoreStore) Set(ctx context.Context, collection, id string, doc any) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, doc)
	return crerr.Wrapf(err, "set %s/%s", collection, id)
}

func (s *firestoreStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, toFirestoreUpdates(updates))
	return crerr.Wrapf(err, "update %s/%s", collection, id)
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return crerr.Wrapf(err, "delete %s/%s", collection, id)
}

func (s *firestoreStore) DeleteAll(ctx context.Context, collection string) (int, error) {
	iter := s.client.Collection(collection).DocumentRefs(ctx)
	deleted := 0
	batch := s.client.Batch()
	inBatch := 0
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, crerr.Wrapf(err, "list %s for delete", collection)
		}
		batch.Delete(ref)
		inBatch++
		// Firestore caps a WriteBatch at 500 operations.
		if inBatch == 500 {
			if _, err := batch.Commit(ctx); err != nil {
				return deleted, crerr.Wrapf(err, "wipe %s", collection)
			}
			deleted += inBatch
			batch = s.client.Batch()
			inBatch = 0
		}
	}
	if inBatch > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return deleted, crerr.Wrapf(err, "wipe %s", collection)
		}
		deleted += inBatch
	}
	return deleted, nil
}

func (s *firestoreStore) Batch() Batch {
	return &firestoreBatch{client: s.client, batch: s.client.Batch()}
}

func (s *firestoreStore) RunTransaction(ctx context.Context, fn func(tx Transaction) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, tx: tx})
	})
}

func (s *firestoreStore) Close() error {
	return s.client.Close()
}

type firestoreDoc struct {
	snap *firestore.DocumentSnapshot
}

func (d *firestoreDoc) ID() string { return d.snap.Ref.ID }

func (d *firestoreDoc) DataTo(out any) error { return d.snap.DataTo(out) }

func (d *firestoreDoc) Data() map[string]any { return d.snap.Data() }

type firestoreBatch struct {
	client *firestore.Client
	batch  *firestore.WriteBatch
	n      int
}

func (b *firestoreBatch) Set(collection, id string, doc any) {
	b.batch.Set(b.client.Collection(collection).Doc(id), doc)
	b.n++
}

func (b *firestoreBatch) Update(collection, id string, updates []Update) {
	b.batch.Update(b.client.Collection(collection).Doc(id), toFirestoreUpdates(updates))
	b.n++
}

func (b *firestoreBatch) Delete(collection, id string) {
	b.batch.Delete(b.client.Collection(collection).Doc(id))
	b.n++
}

func (b *firestoreBatch) Len() int { return b.n }

func (b *firestoreBatch) Commit(ctx context.Context) error {
	if b.n == 0 {
		return nil
	}
	_, err := b.batch.Commit(ctx)
	return crerr.Wrap(err, "commit batch")
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) Get(collection, id string, out any) error {
	snap, err := t.tx.Get(t.client.Collection(collection).Doc(id))
	if snap != nil && !snap.Exists() {
		return crerr.Mark(crerr.Newf("%s/%s", collection, id), ErrNotFound)
	}
	if err != nil {
		return crerr.Wrapf(err, "tx get %s/%s", collection, id)
	}
	return snap.DataTo(out)
}

func (t *firestoreTx) Set(collection, id string, doc any) error {
	return t.tx.Set(t.client.Collection(collection).Doc(id), doc)
}

func toFirestoreUpdates(updates []Update) []firestore.Update {
	out := make([]firestore.Update, len(updates))
	for i, u := range updates {
		out[i] = firestore.Update{Path: u.Path, Value: u.Value}
	}
	return out
}
