// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package semantic

import (
	"context"
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
)

// Context of a query build, analysis, lowering or execution.
type Context struct {
	context.Context
	id     uuid.UUID
	tracer opentracing.Tracer
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithQueryID sets the id of the context.
func WithQueryID(id uuid.UUID) ContextOption {
	return func(ctx *Context) {
		ctx.id = id
	}
}

// NewContext creates a new query context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		id:      uuid.NewV4(),
		tracer:  opentracing.NoopTracer{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewEmptyContext creates a new context with no underlying context.
func NewEmptyContext() *Context {
	return NewContext(context.TODO())
}

// ID returns the unique id of this query context.
func (c *Context) ID() uuid.UUID { return c.id }

// WithContext returns a copy of this context backed by the given inner
// context, keeping the id and tracer.
func (c *Context) WithContext(ctx context.Context) *Context {
	return &Context{Context: ctx, id: c.id, tracer: c.tracer}
}

// Span creates a new tracing span with the given operation name and options.
// If there is a parent span in the context, the new span is a child of it.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}

	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, &Context{Context: ctx, id: c.id, tracer: c.tracer}
}

// NewSpanIter creates a RowIter executed in the given span. The span is
// finished when the iterator is closed or exhausted.
func NewSpanIter(span opentracing.Span, iter RowIter) RowIter {
	return &spanIter{span: span, iter: iter}
}

type spanIter struct {
	span  opentracing.Span
	iter  RowIter
	count int
	done  bool
}

func (i *spanIter) Next() (Row, error) {
	if i.done {
		return nil, io.EOF
	}

	row, err := i.iter.Next()
	if err == io.EOF {
		i.finish()
		return nil, err
	}
	if err != nil {
		i.finishWithError(err)
		return nil, err
	}

	i.count++
	return row, nil
}

func (i *spanIter) finish() {
	if !i.done {
		i.span.SetTag("rows", i.count)
		i.span.Finish()
		i.done = true
	}
}

func (i *spanIter) finishWithError(err error) {
	if !i.done {
		i.span.SetTag("rows", i.count)
		i.span.SetTag("error", err.Error())
		i.span.Finish()
		i.done = true
	}
}

func (i *spanIter) Close() error {
	i.finish()
	return i.iter.Close()
}
