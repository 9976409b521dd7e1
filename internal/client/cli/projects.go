package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// Projects lists the caller's projects.
func (a *App) Projects(ctx context.Context) error {
	projects, err := a.api.ListProjects(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if len(projects) == 0 {
		fmt.Println("No projects yet")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%s  %s  (created %s)\n", p.ID, p.Name, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// NewProject prompts for a name and creates a project.
func (a *App) NewProject(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter project name", os.Stdout)
	if err != nil {
		return err
	}

	p, err := a.api.CreateProject(ctx, name)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
	return nil
}

// RemoveProject prompts for a project ID and deletes the project together
// with every file stored under it.
func (a *App) RemoveProject(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter project id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.DeleteProject(ctx, id); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println("Deleted")
	return nil
}
