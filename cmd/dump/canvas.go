package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dump-go/internal/app"
	"dump-go/internal/dump"
	"dump-go/internal/model"
)

var canvasCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Manage canvases and folders",
}

// canvasMutation builds a command that checks the canvas in args[0] exists
// and then applies fn to the store.
func canvasMutation(use, short string, args cobra.PositionalArgs, fn func(s *dump.Store, args []string) error) *cobra.Command {
	name := "canvas " + strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, name, args, func(ctx context.Context, a *app.DumpApp) error {
				var err error
				if doErr := a.Do(ctx, func(s *dump.Store) {
					if s.FindCanvas(args[0]) == nil {
						err = fmt.Errorf("canvas not found: %s", args[0])
						return
					}
					err = fn(s, args)
				}); doErr != nil {
					return doErr
				}
				return err
			})
		},
	}
}

var canvasLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List canvases as a tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "canvas ls", nil, func(ctx context.Context, a *app.DumpApp) error {
			return a.Do(ctx, func(s *dump.Store) {
				printCanvasTree(s.Canvases(), s.Selected(), 0)
			})
		})
	},
}

func printCanvasTree(canvases []*model.Canvas, selected string, depth int) {
	for _, c := range canvases {
		marker := " "
		if c.ID == selected {
			marker = "*"
		}
		label := c.Name
		if c.IsFolder {
			label += "/"
		}
		var extra []string
		if c.Type != nil {
			extra = append(extra, c.Type.DisplayName())
		}
		if len(c.Tags) > 0 {
			extra = append(extra, "#"+strings.Join(c.Tags, " #"))
		}
		if !c.IsFolder {
			extra = append(extra, fmt.Sprintf("%d item(s)", len(c.Items)))
		}
		fmt.Printf("%s %s%-*s  %s  %s\n", marker, strings.Repeat("  ", depth), 24-2*depth, label, c.ID, strings.Join(extra, ", "))
		printCanvasTree(c.Children, selected, depth+1)
	}
}

var canvasAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a canvas at the root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "canvas add", args, func(ctx context.Context, a *app.DumpApp) error {
			var id string
			if err := a.Do(ctx, func(s *dump.Store) { id = s.AddCanvas(args[0]) }); err != nil {
				return err
			}
			if id == "" {
				return fmt.Errorf("canvas name must not be empty")
			}
			fmt.Printf("Created canvas %s (%s)\n", args[0], id)
			return nil
		})
	},
}

var canvasRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a canvas with its children and items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "canvas rm", args, func(ctx context.Context, a *app.DumpApp) error {
			return a.DeleteCanvas(ctx, args[0])
		})
	},
}

var canvasRenameCmd = canvasMutation("rename ID NAME", "Rename a canvas", cobra.ExactArgs(2),
	func(s *dump.Store, args []string) error {
		if args[1] == "" {
			return fmt.Errorf("canvas name must not be empty")
		}
		s.RenameCanvas(args[0], args[1])
		return nil
	})

var canvasTypeCmd = canvasMutation("type ID todo|articles|none", "Set or clear the canvas type", cobra.ExactArgs(2),
	func(s *dump.Store, args []string) error {
		t := model.ParseCanvasType(args[1])
		if t == nil && args[1] != "none" {
			return fmt.Errorf("unknown canvas type %q (want todo, articles or none)", args[1])
		}
		s.UpdateCanvasType(args[0], t)
		return nil
	})

var canvasTagCmd = canvasMutation("tag ID TAG", "Add a tag to a canvas", cobra.ExactArgs(2),
	func(s *dump.Store, args []string) error {
		s.AddTag(args[0], args[1])
		return nil
	})

var canvasUntagCmd = canvasMutation("untag ID TAG", "Remove a tag from a canvas", cobra.ExactArgs(2),
	func(s *dump.Store, args []string) error {
		s.RemoveTag(args[0], args[1])
		return nil
	})

var canvasFolderCmd = canvasMutation("folder ID", "Wrap a root canvas in a new folder", cobra.ExactArgs(1),
	func(s *dump.Store, args []string) error {
		folderID := s.CreateNewFolder(args[0])
		if folderID == "" {
			return fmt.Errorf("canvas %s is not at the root", args[0])
		}
		fmt.Printf("Created %s (%s)\n", s.FindCanvas(folderID).Name, folderID)
		return nil
	})

var canvasIntoCmd = canvasMutation("into ID FOLDER", "Move a canvas into a folder", cobra.ExactArgs(2),
	func(s *dump.Store, args []string) error {
		return moveIntoFolder(s, args[0], args[1])
	})

// moveIntoFolder moves canvasID into folderID, which must be a folder.
func moveIntoFolder(s *dump.Store, canvasID, folderID string) error {
	folder := s.FindCanvas(folderID)
	if folder == nil {
		return fmt.Errorf("folder not found: %s", folderID)
	}
	if !folder.IsFolder {
		return fmt.Errorf("canvas %s is not a folder", folderID)
	}
	before := s.Version()
	s.AddCanvasToExistingFolder(canvasID, folderID)
	if s.Version() == before {
		return fmt.Errorf("cannot move %s into its own subtree", canvasID)
	}
	return nil
}

var canvasRootCmd = canvasMutation("root ID", "Move a canvas to the end of the root list", cobra.ExactArgs(1),
	func(s *dump.Store, args []string) error {
		s.MoveCanvasToRoot(args[0])
		return nil
	})

var canvasSelectCmd = canvasMutation("select ID", "Show a canvas and its items", cobra.ExactArgs(1),
	func(s *dump.Store, args []string) error {
		s.Select(args[0])
		printItems(s.SelectedCanvas())
		return nil
	})

var canvasReorderCmd = &cobra.Command{
	Use:   "reorder FROM[,FROM...] TO",
	Short: "Move root canvases so they sit before position TO",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseReorder(args[0], args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, "canvas reorder", args, func(ctx context.Context, a *app.DumpApp) error {
			return a.Do(ctx, func(s *dump.Store) { s.ReorderCanvases(from, to) })
		})
	},
}

// parseReorder parses "1,3" and "0" into zero-based indices and an offset.
func parseReorder(fromArg, toArg string) ([]int, int, error) {
	var from []int
	for _, part := range strings.Split(fromArg, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, 0, fmt.Errorf("invalid index %q: %w", part, err)
		}
		from = append(from, i)
	}
	to, err := strconv.Atoi(toArg)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid offset %q: %w", toArg, err)
	}
	return from, to, nil
}

func init() {
	canvasCmd.AddCommand(canvasLsCmd)
	canvasCmd.AddCommand(canvasAddCmd)
	canvasCmd.AddCommand(canvasRmCmd)
	canvasCmd.AddCommand(canvasRenameCmd)
	canvasCmd.AddCommand(canvasTypeCmd)
	canvasCmd.AddCommand(canvasTagCmd)
	canvasCmd.AddCommand(canvasUntagCmd)
	canvasCmd.AddCommand(canvasFolderCmd)
	canvasCmd.AddCommand(canvasIntoCmd)
	canvasCmd.AddCommand(canvasRootCmd)
	canvasCmd.AddCommand(canvasSelectCmd)
	canvasCmd.AddCommand(canvasReorderCmd)
}
