package main

type service struct {
	Title       string
	Description string
	Tools       string
}

var (
	HeroTagline = `A passionate Software Engineer specializing in full-stack web and mobile development.`

	AboutMe = `I love building software that's both useful and fun, and I'm always curious about how things work behind the scenes.
	Most of my projects start with a simple idea and turn into a chance to learn something new, whether it's exploring a
	different language, experimenting with tools, or solving tricky problems.`

	Skills = []string{
		"Go", "TypeScript", "React", "Next.js", "Node.js", "Express.js",
		"React Native", "Kotlin", "SQL", "Figma",
	}

	Services = []service{
		{
			Title: "Web Development",
			Description: `Building responsive, high-performance web applications using modern frameworks, with robust
			backend services. I focus on clean code, scalability, and optimal user experience.`,
			Tools: "React, Next.js, Express.js, Node.js",
		},
		{
			Title: "Mobile App Development",
			Description: `Crafting intuitive and feature-rich mobile applications for iOS and Android, using React Native
			for cross-platform efficiency and native Kotlin where the platform calls for it.`,
			Tools: "React Native, Kotlin",
		},
		{
			Title: "UI/UX Design",
			Description: `Designing user-centric interfaces that are visually appealing, functional and easy to navigate,
			from user research and wireframes to prototypes and iterative design.`,
			Tools: "Figma, Adobe XD, User-Centric Design",
		},
	}
)
