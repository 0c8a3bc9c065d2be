/*
Package mongodataset reads datasets from MongoDB collections holding one
document per row, with a field per attribute and one for the label.
*/
package mongodataset

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/jjbrophy47/dare/dataset"
)

/*
Read takes a context, a MongoDB session, a collection name, the name of the
label field and the attribute names and returns the dataset held by the
collection of the session's default database. When names is empty the
attributes are the fields of the first document other than _id and the
label, sorted by name.
*/
func Read(ctx context.Context, session *mgo.Session, collection, label string, names []string) (*dataset.Dataset, error) {
	iter := session.DB("").C(collection).Find(nil).Sort("_id").Iter()
	defer iter.Close()
	var docs []bson.M
	var doc bson.M
	for iter.Next(&doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		doc = nil
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading collection %s", collection)
	}
	return FromDocuments(docs, label, names)
}

/*
FromDocuments takes a set of documents, the name of the label field and the
attribute names and returns the dataset they hold. When names is empty the
attributes are taken from the first document.
*/
func FromDocuments(docs []bson.M, label string, names []string) (*dataset.Dataset, error) {
	if len(names) == 0 && len(docs) > 0 {
		for k := range docs[0] {
			if k != "_id" && k != label {
				names = append(names, k)
			}
		}
		sort.Strings(names)
	}
	d := dataset.New(names, label)
	for r, doc := range docs {
		x := make([]int, len(names))
		for j, name := range names {
			v, err := toInt(doc[name])
			if err != nil {
				return nil, errors.Wrapf(err, "document %d field %s", r, name)
			}
			x[j] = v
		}
		y, err := toInt(doc[label])
		if err != nil {
			return nil, errors.Wrapf(err, "document %d label %s", r, label)
		}
		err = d.Append(x, y)
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", r)
		}
	}
	return d, nil
}

func toInt(v interface{}) (int, error) {
	switch v := v.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, errors.Errorf("non integer value %v", v)
		}
		return int(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, errors.New("missing value")
	}
	return 0, errors.Errorf("unexpected value %v of type %T", v, v)
}
