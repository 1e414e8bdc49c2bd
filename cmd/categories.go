package main

import (
	"context"

	"github.com/desertthunder/shopx/internal/formatter"
	"github.com/desertthunder/shopx/internal/forms"
	"github.com/urfave/cli/v3"
)

var categoryFileFlags = []struct{ flag, field string }{
	{"image", "image"},
}

func applyCategoryFlags(cmd *cli.Command, s *forms.Session) error {
	if cmd.IsSet("name") {
		if err := s.SetText("name", cmd.String("name")); err != nil {
			return err
		}
	}
	return attachFiles(cmd, s, categoryFileFlags)
}

// CategoriesList prints every category.
func (r *Runner) CategoriesList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	if err := r.engine.Categories.Load(ctx); err != nil {
		return err
	}
	cats := r.engine.Categories.Items()

	if cmd.Bool("json") {
		return r.writeJSON(cats, true)
	}

	r.writePlain("%s\n", formatter.CategoryTable(cats))
	r.writePlain("%s\n", formatter.Summary(len(cats), len(cats), "categories"))
	return nil
}

// CategoriesCreate creates a category from --name and --image.
func (r *Runner) CategoriesCreate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	s := forms.NewCreate(forms.CategorySchema)
	if err := applyCategoryFlags(cmd, s); err != nil {
		return err
	}
	return r.submit(ctx, cmd, s, r.engine.SaveCategory)
}

// CategoriesUpdate sends the changed fields of a category.
func (r *Runner) CategoriesUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}
	id, err := parseID(cmd)
	if err != nil {
		return err
	}

	c, err := r.engine.FindCategory(ctx, id)
	if err != nil {
		return err
	}

	s := forms.NewEdit(forms.CategorySchema, c.ID, forms.CategoryRecord(*c))
	if err := applyCategoryFlags(cmd, s); err != nil {
		return err
	}
	return r.submit(ctx, cmd, s, r.engine.SaveCategory)
}

// CategoriesDelete deletes a category.
func (r *Runner) CategoriesDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}
	id, err := parseID(cmd)
	if err != nil {
		return err
	}

	if err := r.engine.DeleteCategory(ctx, id); err != nil {
		return err
	}
	r.drainNotices()
	return nil
}
