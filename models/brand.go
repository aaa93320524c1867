package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Named is implemented by the name-keyed reference entities.
type Named[T any] interface {
	Ref() NamedRef
	WithName(name string) T
}

type Brand struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

func NewBrand(name string) Brand {
	return Brand{ID: primitive.NewObjectID(), Name: name}
}

func (b Brand) Ref() NamedRef              { return NamedRef{ID: b.ID, Name: b.Name} }
func (b Brand) WithName(name string) Brand { b.Name = name; return b }

type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

func NewCategory(name string) Category {
	return Category{ID: primitive.NewObjectID(), Name: name}
}

func (c Category) Ref() NamedRef                 { return NamedRef{ID: c.ID, Name: c.Name} }
func (c Category) WithName(name string) Category { c.Name = name; return c }
