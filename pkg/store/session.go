package store

import (
	bolt "go.etcd.io/bbolt"
	"src.rtorc.sh/pkg/obj"
)

func init() {
	initDB["initialize session table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSession))
		return err
	}
}

// SaveSession replaces all saved session values.
func (s *dbStore) SaveSession(values map[string]obj.Object) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketSession)); err != nil {
			return err
		}
		b, err := tx.CreateBucket([]byte(bucketSession))
		if err != nil {
			return err
		}
		for k, v := range values {
			data, err := EncodeObject(v)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(k), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSession returns all saved session values. Values that cannot be decoded
// are logged and skipped.
func (s *dbStore) LoadSession() (map[string]obj.Object, error) {
	values := make(map[string]obj.Object)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSession)).ForEach(func(k, v []byte) error {
			o, err := DecodeObject(v)
			if err != nil {
				logger.Printf("skipping saved value of %q: %v", k, err)
				return nil
			}
			values[string(k)] = o
			return nil
		})
	})
	return values, err
}
