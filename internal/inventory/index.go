package inventory

// CategoryBucket groups the CVs carrying one category label.
type CategoryBucket struct {
	Category  string
	Count     int
	MemberIDs map[string]struct{}
}

// BuildIndex derives the category index from a document list. It is
// recomputed from scratch on every inventory change and never persisted.
func BuildIndex(docs []Summary) map[string]CategoryBucket {
	index := make(map[string]CategoryBucket)
	for i := range docs {
		category := docs[i].Category
		bucket, ok := index[category]
		if !ok {
			bucket = CategoryBucket{
				Category:  category,
				MemberIDs: make(map[string]struct{}),
			}
		}
		bucket.MemberIDs[docs[i].ID] = struct{}{}
		bucket.Count = len(bucket.MemberIDs)
		index[category] = bucket
	}
	return index
}
